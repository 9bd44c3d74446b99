package widgets

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/state"
)

const (
	statusWidth  = 300
	statusEvents = 12
)

var (
	colorLabel   = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	colorValue   = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	colorWarning = color.NRGBA{R: 240, G: 110, B: 100, A: 255}
)

// Status is the side panel with the robot's state, the command queue and
// recent events.
type Status struct {
	state *state.State
}

// NewStatus creates a new status panel.
func NewStatus(st *state.State) *Status {
	return &Status{state: st}
}

// StatusLines renders the snapshot as label/value rows.
func StatusLines(snap sim.Snapshot, speed float64) [][2]string {
	lines := [][2]string{
		{"time", fmt.Sprintf("%.2f s  (x%.2g)", snap.Time, speed)},
		{"pose", snap.Pose.String()},
		{"velocity", fmt.Sprintf("%.3f m/s  %.3f rad/s", snap.Velocities.Linear, snap.Velocities.Angular)},
		{"wheels", fmt.Sprintf("L %.3f  R %.3f", snap.Wheels.Left, snap.Wheels.Right)},
		{"target wheels", fmt.Sprintf("L %.3f  R %.3f", snap.TargetWheels.Left, snap.TargetWheels.Right)},
		{"forces", fmt.Sprintf("%.2f N  %.2f N·m", snap.Forces.Linear, snap.Forces.Angular)},
		{"heading", fmt.Sprintf("%.1f°", snap.Pose.Theta*180/math.Pi)},
	}
	active := "idle"
	if snap.Active != nil {
		active = snap.Active.Description
	}
	lines = append(lines, [2]string{"active", active})
	lines = append(lines, [2]string{"pending", fmt.Sprintf("%d", len(snap.Pending))})
	if snap.Collided {
		hit := "obstacle"
		if snap.CollidedWith != nil {
			hit = snap.CollidedWith.Obstacle().String()
		}
		lines = append(lines, [2]string{"collided", hit})
	}
	return lines
}

// Layout renders the status panel.
func (s *Status) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	gtx.Constraints.Min.X = statusWidth
	gtx.Constraints.Max.X = statusWidth
	size := image.Point{X: statusWidth, Y: gtx.Constraints.Max.Y}
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(image.Rectangle{Max: size}).Op())

	var children []layout.FlexChild
	for _, l := range StatusLines(s.state.Snapshot, s.state.Playback.Speed) {
		children = append(children, layout.Rigid(s.row(th, l[0], l[1])))
	}
	children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(12), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			label := material.Label(th, 12, "events")
			label.Color = colorLabel
			return label.Layout(gtx)
		})
	}))
	for _, e := range s.state.Events.Recent(statusEvents) {
		text := e.String()
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			label := material.Label(th, 11, text)
			label.Color = colorValue
			return label.Layout(gtx)
		}))
	}

	layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
	return layout.Dimensions{Size: size}
}

func (s *Status) row(th *material.Theme, name, value string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Dp(unit.Dp(90))
				label := material.Label(th, 12, name)
				label.Color = colorLabel
				return label.Layout(gtx)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				label := material.Label(th, 12, value)
				label.Color = colorValue
				if name == "collided" {
					label.Color = colorWarning
				}
				return label.Layout(gtx)
			}),
		)
	}
}
