package widgets

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/state"
)

// Toolbar provides playback, view and command buttons.
type Toolbar struct {
	state     *state.State
	workspace *Workspace

	// Playback
	playBtn      widget.Clickable
	stepBtn      widget.Clickable
	resetBtn     widget.Clickable
	speedUpBtn   widget.Clickable
	speedDownBtn widget.Clickable

	// View
	fitBtn    widget.Clickable
	followBtn widget.Clickable

	// Commands
	forwardBtn  widget.Clickable
	backwardBtn widget.Clickable
	leftBtn     widget.Clickable
	rightBtn    widget.Clickable
	stopBtn     widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State, ws *Workspace) *Toolbar {
	return &Toolbar{
		state:     st,
		workspace: ws,
	}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 48

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	t.handleClicks(gtx)

	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutPlaybackControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutViewControls(gtx, th)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutCommandControls(gtx, th)
			}),
		)
	})
}

func (t *Toolbar) layoutPlaybackControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	play := ">"
	if t.state.Playback.Playing {
		play = "||"
	}
	return t.row(gtx, th,
		button{&t.playBtn, play, false},
		button{&t.stepBtn, ">|", false},
		button{&t.resetBtn, "Reset", false},
		button{&t.speedDownBtn, "-", false},
		button{&t.speedUpBtn, "+", false},
	)
}

func (t *Toolbar) layoutViewControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return t.row(gtx, th,
		button{&t.fitBtn, "Fit", false},
		button{&t.followBtn, "Follow", t.state.Follow},
	)
}

func (t *Toolbar) layoutCommandControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return t.row(gtx, th,
		button{&t.leftBtn, "Left", false},
		button{&t.forwardBtn, "Fwd", false},
		button{&t.backwardBtn, "Back", false},
		button{&t.rightBtn, "Right", false},
		button{&t.stopBtn, "Stop", false},
	)
}

type button struct {
	btn    *widget.Clickable
	text   string
	active bool
}

func (t *Toolbar) row(gtx layout.Context, th *material.Theme, buttons ...button) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(buttons))
	for _, b := range buttons {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return t.buttonBase(gtx, th, b.btn, b.text, b.active)
			})
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) buttonBase(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string, active bool) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if active {
		bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
	}
	if btn.Hovered() {
		bg.R = minU8(bg.R+15, 255)
		bg.G = minU8(bg.G+15, 255)
		bg.B = minU8(bg.B+15, 255)
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: 32, Y: 28}
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Inset{Left: unit.Dp(6), Right: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						label := material.Label(th, 12, text)
						label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
						return label.Layout(gtx)
					})
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	pb := t.state.Playback
	for t.playBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.stepBtn.Clicked(gtx) {
		pb.Pause()
		pb.StepForward()
	}
	for t.resetBtn.Clicked(gtx) {
		t.state.Reset()
	}
	for t.speedUpBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed * 1.5)
	}
	for t.speedDownBtn.Clicked(gtx) {
		pb.SetSpeed(pb.Speed / 1.5)
	}

	for t.fitBtn.Clicked(gtx) {
		t.workspace.Fit()
	}
	for t.followBtn.Clicked(gtx) {
		t.state.Follow = !t.state.Follow
	}

	for t.forwardBtn.Clicked(gtx) {
		t.state.Quick(state.QuickForward, false)
	}
	for t.backwardBtn.Clicked(gtx) {
		t.state.Quick(state.QuickBackward, false)
	}
	for t.leftBtn.Clicked(gtx) {
		t.state.Quick(state.QuickLeft, false)
	}
	for t.rightBtn.Clicked(gtx) {
		t.state.Quick(state.QuickRight, false)
	}
	for t.stopBtn.Clicked(gtx) {
		t.state.Quick(state.QuickStop, false)
	}
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
