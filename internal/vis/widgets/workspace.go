// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/golang/geo/r2"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/draw"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/interact"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/state"
)

const (
	gridSize  = 1.0 // metres
	fitMargin = 40  // pixels
)

// Workspace is the main 2D view: grid, obstacles, targets and the robot.
// A primary click sends the robot to the clicked point.
type Workspace struct {
	state     *state.State
	camera    *interact.Camera
	obstacles []core.Obstacle

	fit bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:     st,
		camera:    camera,
		obstacles: st.Sim.Workspace().Obstacles(),
		fit:       true,
	}
}

// Fit requests that the next layout frames the whole workspace.
func (w *Workspace) Fit() {
	w.fit = true
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	w.handlePointerEvents(gtx)

	snap := w.state.Snapshot
	switch {
	case w.fit:
		w.camera.FitBounds(w.worldBounds(), float32(bounds.X), float32(bounds.Y), fitMargin)
		w.fit = false
	case w.state.Follow:
		w.camera.CenterOn(snap.Pose.X, snap.Pose.Y, float32(bounds.X), float32(bounds.Y))
	}

	draw.DrawGrid(gtx, w.camera, gridSize)

	var hit *core.Obstacle
	if snap.CollidedWith != nil {
		o := snap.CollidedWith.Obstacle()
		hit = &o
	}
	draw.DrawObstacles(gtx, w.obstacles, hit, w.camera)

	for _, p := range snap.Pending {
		if p.Target != nil {
			draw.DrawTarget(gtx, *p.Target, snap.Body, w.camera, false)
		}
	}
	if snap.Active != nil && snap.Active.Target != nil {
		draw.DrawTarget(gtx, *snap.Active.Target, snap.Body, w.camera, true)
	}

	draw.DrawRobot(gtx, snap, w.camera)

	return layout.Dimensions{Size: bounds}
}

// worldBounds covers the obstacles, the origin and the robot.
func (w *Workspace) worldBounds() r2.Rect {
	b := w.state.Sim.Workspace().Bounds()
	p := w.state.Snapshot.Pose
	return b.AddPoint(r2.Point{X: p.X, Y: p.Y})
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		w.camera.HandleEvent(pe)

		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			x, y := w.camera.ScreenToWorld(pe.Position.X, pe.Position.Y)
			if _, blocked := w.state.Sim.Workspace().At(x, y); blocked {
				w.state.Events.Add(w.state.Snapshot.Time, "(%.2f, %.2f) is inside an obstacle", x, y)
				continue
			}
			w.state.GoTo(x, y)
		}
	}
}
