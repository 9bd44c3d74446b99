package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/interact"
)

var (
	ColorObstacle    = color.NRGBA{R: 90, G: 95, B: 105, A: 255}
	ColorObstacleHit = color.NRGBA{R: 200, G: 90, B: 80, A: 255}
	ColorGrid        = color.NRGBA{R: 40, G: 45, B: 50, A: 255}
	ColorAxis        = color.NRGBA{R: 70, G: 78, B: 88, A: 255}
)

// ObstacleRect returns the screen rectangle covered by an obstacle.
func ObstacleRect(o core.Obstacle, camera *interact.Camera) image.Rectangle {
	r := o.Rect()
	x0, y0 := camera.WorldToScreen(r.X.Lo, r.Y.Hi)
	x1, y1 := camera.WorldToScreen(r.X.Hi, r.Y.Lo)
	return image.Rect(int(math.Floor(float64(x0))), int(math.Floor(float64(y0))),
		int(math.Ceil(float64(x1))), int(math.Ceil(float64(y1))))
}

// DrawObstacles fills every obstacle, highlighting the one matching hit.
func DrawObstacles(gtx layout.Context, obstacles []core.Obstacle, hit *core.Obstacle, camera *interact.Camera) {
	for _, o := range obstacles {
		col := ColorObstacle
		if hit != nil && *hit == o {
			col = ColorObstacleHit
		}
		paint.FillShape(gtx.Ops, col, clip.Rect(ObstacleRect(o, camera)).Op())
	}
}

// DrawGrid draws grid lines every gridSize metres across the visible area,
// with the world axes emphasised.
func DrawGrid(gtx layout.Context, camera *interact.Camera, gridSize float64) {
	if gridSize <= 0 {
		return
	}
	bounds := gtx.Constraints.Max
	visible := camera.Visible(float32(bounds.X), float32(bounds.Y))

	for x := math.Floor(visible.X.Lo/gridSize) * gridSize; x <= visible.X.Hi; x += gridSize {
		sx, _ := camera.WorldToScreen(x, 0)
		col := ColorGrid
		if math.Abs(x) < gridSize/2 {
			col = ColorAxis
		}
		rect := image.Rect(int(sx), 0, int(sx)+1, bounds.Y)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}

	for y := math.Floor(visible.Y.Lo/gridSize) * gridSize; y <= visible.Y.Hi; y += gridSize {
		_, sy := camera.WorldToScreen(0, y)
		col := ColorGrid
		if math.Abs(y) < gridSize/2 {
			col = ColorAxis
		}
		rect := image.Rect(0, int(sy), bounds.X, int(sy)+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}
