package interact

import (
	"testing"

	"gioui.org/f32"
	"gioui.org/io/pointer"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestWorldToScreenFlipsY(t *testing.T) {
	c := NewCamera()
	c.OffsetX, c.OffsetY, c.Scale = 100, 200, 50

	sx, sy := c.WorldToScreen(1, 1)
	assert.Equal(t, float32(150), sx)
	assert.Equal(t, float32(150), sy)

	wx, wy := c.ScreenToWorld(150, 150)
	assert.InDelta(t, 1.0, wx, 1e-6)
	assert.InDelta(t, 1.0, wy, 1e-6)
}

func TestZoomKeepsAnchor(t *testing.T) {
	c := NewCamera()
	wx, wy := c.ScreenToWorld(320, 240)

	c.ZoomBy(2, 320, 240)
	assert.Equal(t, float32(2*defaultScale), c.Scale)

	gx, gy := c.ScreenToWorld(320, 240)
	assert.InDelta(t, wx, gx, 1e-4)
	assert.InDelta(t, wy, gy, 1e-4)

	c.ZoomBy(1e6, 0, 0)
	assert.Equal(t, float32(maxScale), c.Scale)
	c.ZoomBy(1e-6, 0, 0)
	assert.Equal(t, float32(minScale), c.Scale)
}

func TestFitBounds(t *testing.T) {
	c := NewCamera()
	bounds := r2.RectFromPoints(r2.Point{X: -2, Y: -1}, r2.Point{X: 2, Y: 1})

	c.FitBounds(bounds, 420, 420, 10)
	assert.Equal(t, float32(100), c.Scale)

	sx, sy := c.WorldToScreen(0, 0)
	assert.Equal(t, float32(210), sx)
	assert.Equal(t, float32(210), sy)

	vis := c.Visible(420, 420)
	assert.True(t, vis.Contains(bounds))

	before := *c
	c.FitBounds(r2.EmptyRect(), 420, 420, 10)
	assert.Equal(t, before.Scale, c.Scale)
}

func TestHandleEventPans(t *testing.T) {
	c := NewCamera()
	x0, y0 := c.OffsetX, c.OffsetY

	c.HandleEvent(pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonSecondary, Position: f32.Pt(10, 10)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Buttons: pointer.ButtonSecondary, Position: f32.Pt(30, 5)})
	c.HandleEvent(pointer.Event{Kind: pointer.Release, Position: f32.Pt(30, 5)})
	assert.Equal(t, x0+20, c.OffsetX)
	assert.Equal(t, y0-5, c.OffsetY)

	// Primary drags do not pan.
	c.HandleEvent(pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonPrimary, Position: f32.Pt(0, 0)})
	c.HandleEvent(pointer.Event{Kind: pointer.Drag, Buttons: pointer.ButtonPrimary, Position: f32.Pt(50, 50)})
	assert.Equal(t, x0+20, c.OffsetX)
}

func TestScrollZooms(t *testing.T) {
	c := NewCamera()
	c.HandleEvent(pointer.Event{Kind: pointer.Scroll, Scroll: f32.Pt(0, -1), Position: f32.Pt(0, 0)})
	assert.Greater(t, c.Scale, float32(defaultScale))
	c.Reset()
	c.HandleEvent(pointer.Event{Kind: pointer.Scroll, Scroll: f32.Pt(0, 1), Position: f32.Pt(0, 0)})
	assert.Less(t, c.Scale, float32(defaultScale))
}
