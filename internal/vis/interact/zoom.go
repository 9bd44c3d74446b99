// Package interact handles user interactions like pan and zoom.
package interact

import (
	"gioui.org/io/pointer"
	"github.com/golang/geo/r2"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

const (
	minScale     = 5
	maxScale     = 1000
	defaultScale = 80
	zoomStep     = 1.1
)

// Camera maps world metres (Y up) onto screen pixels (Y down).
type Camera struct {
	OffsetX float32 // screen position of the world origin
	OffsetY float32
	Scale   float32 // pixels per metre

	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a camera with the origin at the default offset.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 400
	c.OffsetY = 300
	c.Scale = defaultScale
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Scale + c.OffsetX
	screenY = c.OffsetY - float32(worldY)*c.Scale
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Scale)
	worldY = float64((c.OffsetY - screenY) / c.Scale)
	return
}

// Visible returns the world rectangle covered by a screen of the given size.
func (c *Camera) Visible(screenWidth, screenHeight float32) r2.Rect {
	x0, y0 := c.ScreenToWorld(0, 0)
	x1, y1 := c.ScreenToWorld(screenWidth, screenHeight)
	return r2.RectFromPoints(r2.Point{X: x0, Y: y0}, r2.Point{X: x1, Y: y1})
}

// HandleEvent pans on secondary or tertiary drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomStep, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomStep, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, keeping the world point under the screen
// point fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Scale = core.Clamp(c.Scale*factor, minScale, maxScale)

	sx, sy := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - sx
	c.OffsetY += centerY - sy
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Scale
	c.OffsetY = screenHeight/2 + float32(worldY)*c.Scale
}

// FitBounds scales and centers the camera so bounds fill the screen minus
// margin pixels on each side.
func (c *Camera) FitBounds(bounds r2.Rect, screenWidth, screenHeight, margin float32) {
	size := bounds.Size()
	if bounds.IsEmpty() || size.X <= 0 || size.Y <= 0 {
		return
	}

	zoomX := (screenWidth - 2*margin) / float32(size.X)
	zoomY := (screenHeight - 2*margin) / float32(size.Y)
	c.Scale = core.Clamp(min(zoomX, zoomY), minScale, maxScale)

	center := bounds.Center()
	c.CenterOn(center.X, center.Y, screenWidth, screenHeight)
}
