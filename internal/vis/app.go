// Package vis implements a Gio-based visualization for the robot simulator.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/interact"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/observer"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/state"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/widgets"
)

// App is the main visualization application. It steps the simulator on
// the UI goroutine, one batch per frame.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	toolbar   *widgets.Toolbar
	status    *widgets.Status
	camera    *interact.Camera
	logger    golog.Logger
}

// NewApp creates a visualization around s.
func NewApp(s *sim.Simulator, logger golog.Logger) *App {
	st := state.NewState(s)
	observer.Attach(st)

	camera := interact.NewCamera()
	ws := widgets.NewWorkspace(st, camera)

	return &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: ws,
		toolbar:   widgets.NewToolbar(st, ws),
		status:    widgets.NewStatus(st),
		camera:    camera,
		logger:    logger,
	}
}

// State exposes the visualization state.
func (a *App) State() *state.State {
	return a.state
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops

	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			a.logger.Infow("window closed", "simulated_time", a.state.Snapshot.Time)
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}

			event.Op(gtx.Ops, tag)
			gtx.Execute(key.FocusCmd{Tag: tag})

			a.state.Tick()
			a.layout(gtx)
			e.Frame(gtx.Ops)

			// Redraw continuously; every frame advances the simulation.
			w.Invalidate()
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	continuous := e.Modifiers.Contain(key.ModShift)
	switch e.Name {
	case key.NameUpArrow:
		a.state.Quick(state.QuickForward, continuous)
	case key.NameDownArrow:
		a.state.Quick(state.QuickBackward, continuous)
	case key.NameLeftArrow:
		a.state.Quick(state.QuickLeft, continuous)
	case key.NameRightArrow:
		a.state.Quick(state.QuickRight, continuous)
	case key.NameSpace:
		a.state.Quick(state.QuickStop, false)
	case "P":
		a.state.Playback.TogglePlay()
	case "N":
		a.state.Playback.Pause()
		a.state.Playback.StepForward()
	case "R":
		a.state.Reset()
	case "C":
		a.camera.Reset()
		a.workspace.Fit()
	case "F":
		a.state.Follow = !a.state.Follow
	case "+", "=":
		a.state.Playback.SetSpeed(a.state.Playback.Speed * 1.5)
	case "-":
		a.state.Playback.SetSpeed(a.state.Playback.Speed / 1.5)
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, a.workspace.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return a.status.Layout(gtx, a.theme)
				}),
			)
		}),
	)
}
