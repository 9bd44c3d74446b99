// Package draw provides rendering functions for visualization.
package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/interact"
)

var (
	ColorBody      = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	ColorCollided  = color.NRGBA{R: 230, G: 80, B: 70, A: 255}
	ColorHitbox    = color.NRGBA{R: 255, G: 255, B: 255, A: 160}
	ColorHeading   = color.NRGBA{R: 255, G: 220, B: 90, A: 255}
	ColorWheel     = color.NRGBA{R: 40, G: 45, B: 50, A: 255}
	ColorTarget    = color.NRGBA{R: 80, G: 200, B: 120, A: 220}
	ColorTargetDim = color.NRGBA{R: 80, G: 200, B: 120, A: 90}
)

// BodyCorners returns the four corners of a body of the given dimensions
// at pose, counter-clockwise from the front-right corner. Length runs
// along the heading.
func BodyCorners(pose core.Pose, dims core.Dimensions) [4]core.Pose {
	hl, hw := dims.Length/2, dims.Width/2
	c, s := math.Cos(pose.Theta), math.Sin(pose.Theta)
	local := [4][2]float64{{hl, -hw}, {hl, hw}, {-hl, hw}, {-hl, -hw}}

	var out [4]core.Pose
	for i, p := range local {
		out[i] = core.Pose{
			X: pose.X + p[0]*c - p[1]*s,
			Y: pose.Y + p[0]*s + p[1]*c,
		}
	}
	return out
}

// DrawRobot draws the body, wheels, hitbox outline and heading of the
// snapshot's robot.
func DrawRobot(gtx layout.Context, snap sim.Snapshot, camera *interact.Camera) {
	col := ColorBody
	if snap.Collided {
		col = ColorCollided
	}

	corners := BodyCorners(snap.Pose, snap.Body)
	var pts [4]f32.Point
	for i, p := range corners {
		pts[i] = screenPt(camera, p.X, p.Y)
	}
	fillPolygon(gtx, pts[:], col)

	// Wheels sit on the left and right sides of the body.
	wheel := core.Dimensions{Width: snap.Body.Width * 0.15, Length: snap.Body.Length * 0.5}
	for _, side := range []float64{1, -1} {
		off := side * snap.Body.Width / 2
		center := core.Pose{
			X:     snap.Pose.X - off*math.Sin(snap.Pose.Theta),
			Y:     snap.Pose.Y + off*math.Cos(snap.Pose.Theta),
			Theta: snap.Pose.Theta,
		}
		var w [4]f32.Point
		for i, p := range BodyCorners(center, wheel) {
			w[i] = screenPt(camera, p.X, p.Y)
		}
		fillPolygon(gtx, w[:], ColorWheel)
	}

	var hb [4]f32.Point
	for i, p := range snap.Hitbox {
		hb[i] = screenPt(camera, p[0], p[1])
	}
	strokePolygon(gtx, hb[:], 1.5, ColorHitbox)

	reach := snap.Body.Length * 0.75
	head := screenPt(camera,
		snap.Pose.X+reach*math.Cos(snap.Pose.Theta),
		snap.Pose.Y+reach*math.Sin(snap.Pose.Theta))
	center := screenPt(camera, snap.Pose.X, snap.Pose.Y)
	drawLine(gtx, center, head, 3, ColorHeading)
	drawFilledCircle(gtx, center, 4, ColorHeading)
}

// DrawTarget draws a ghost of the body at a command's target pose.
// Pending targets are drawn dimmer than the active one.
func DrawTarget(gtx layout.Context, target core.Pose, dims core.Dimensions, camera *interact.Camera, active bool) {
	col := ColorTargetDim
	if active {
		col = ColorTarget
	}

	var pts [4]f32.Point
	for i, p := range BodyCorners(target, dims) {
		pts[i] = screenPt(camera, p.X, p.Y)
	}
	strokePolygon(gtx, pts[:], 2, col)

	reach := dims.Length / 2
	center := screenPt(camera, target.X, target.Y)
	tip := screenPt(camera, target.X+reach*math.Cos(target.Theta), target.Y+reach*math.Sin(target.Theta))
	drawLine(gtx, center, tip, 2, col)
}

func screenPt(camera *interact.Camera, x, y float64) f32.Point {
	sx, sy := camera.WorldToScreen(x, y)
	return f32.Pt(sx, sy)
}

func fillPolygon(gtx layout.Context, pts []f32.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(pts[0])
	for _, p := range pts[1:] {
		path.LineTo(p)
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func strokePolygon(gtx layout.Context, pts []f32.Point, width float32, col color.NRGBA) {
	for i := range pts {
		drawLine(gtx, pts[i], pts[(i+1)%len(pts)], width, col)
	}
}

func drawLine(gtx layout.Context, from, to f32.Point, width float32, col color.NRGBA) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(from.X+px, from.Y+py))
	path.LineTo(f32.Pt(to.X+px, to.Y+py))
	path.LineTo(f32.Pt(to.X-px, to.Y-py))
	path.LineTo(f32.Pt(from.X-px, from.Y-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, center f32.Point, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(center.X+radius, center.Y))

	segments := 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(
			center.X+radius*float32(math.Cos(angle)),
			center.Y+radius*float32(math.Sin(angle))))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
