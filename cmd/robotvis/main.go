// Command robotvis runs the simulator in-process with a Gio window.
//
// Arrow keys queue moves and turns (hold Shift for continuous driving),
// space stops, P pauses, N single-steps, R resets, C refits the view, F
// follows the robot and a left click drives to the clicked point. The
// UDP command port stays open so robotctl can drive the same robot.
package main

import (
	"context"
	"flag"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/transport"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON file (default: built-in arena)")
	port := flag.Int("port", transport.DefaultPort, "UDP command port (-1 to disable)")
	dt := flag.Float64("dt", 1.0/60.0, "Simulation time step (s)")
	flag.Parse()

	logger := golog.NewDevelopmentLogger("robotvis")

	scenario := sim.DefaultScenario()
	if *scenarioPath != "" {
		var err error
		if scenario, err = sim.LoadScenario(*scenarioPath); err != nil {
			logger.Fatalw("failed to load scenario", "error", err)
		}
	}

	cfg := sim.DefaultConfig()
	cfg.TimeStep = *dt
	s, err := sim.NewSimulator(cfg, scenario, logger)
	if err != nil {
		logger.Fatalw("failed to create simulator", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *port >= 0 {
		l, err := transport.Listen(*port, logger)
		if err != nil {
			logger.Fatalw("failed to listen", "error", err)
		}
		l.Start()
		defer l.Stop()
		logger.Infow("listening for commands", "addr", l.LocalAddr().String())
		go l.Serve(ctx, s)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Differential Drive Simulator - "+scenario.Name),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(s, logger)
		if err := application.Run(window); err != nil {
			logger.Fatalw("window error", "error", err)
		}
		cancel()
		os.Exit(0)
	}()
	app.Main()
}
