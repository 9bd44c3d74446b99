// Command robotsim runs the differential-drive robot simulator headless.
//
// Commands arrive as JSON datagrams on a UDP port (see robotctl), over the
// telemetry WebSocket, or as lines on stdin:
//
//	move distance=1
//	turn angle=-1.57 angular_speed=0.5
//	stop duration=2
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/google/uuid"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/discovery"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/telemetry"
	"github.com/elektrokombinacija/diffdrive-sim/internal/transport"
)

func main() {
	name := flag.String("name", "", "Instance name announced over mDNS (default: robotsim-<random>)")
	port := flag.Int("port", transport.DefaultPort, "UDP command port")
	scenarioPath := flag.String("scenario", "", "Scenario JSON file (default: built-in arena)")
	wsAddr := flag.String("ws", ":8080", "Telemetry HTTP/WebSocket address (empty to disable)")
	dt := flag.Float64("dt", 1.0/60.0, "Simulation time step (s)")
	rtf := flag.Float64("rtf", 1, "Real-time factor (0 = as fast as possible)")
	duration := flag.Float64("duration", 0, "Stop after this many simulated seconds (0 = run until interrupted)")
	metricsOut := flag.String("metrics", "", "Write metrics JSON here on exit")
	announce := flag.Bool("mdns", true, "Announce over mDNS")
	console := flag.Bool("console", true, "Read commands from stdin")
	debug := flag.Bool("debug", false, "Development logging")
	flag.Parse()

	logger := golog.NewLogger("robotsim")
	if *debug {
		logger = golog.NewDevelopmentLogger("robotsim")
	}

	if err := run(logger, options{
		name:         *name,
		port:         *port,
		scenarioPath: *scenarioPath,
		wsAddr:       *wsAddr,
		timeStep:     *dt,
		rtf:          *rtf,
		duration:     *duration,
		metricsOut:   *metricsOut,
		announce:     *announce,
		console:      *console,
	}); err != nil {
		logger.Fatalw("robotsim failed", "error", err)
	}
}

type options struct {
	name         string
	port         int
	scenarioPath string
	wsAddr       string
	timeStep     float64
	rtf          float64
	duration     float64
	metricsOut   string
	announce     bool
	console      bool
}

func run(logger golog.Logger, opts options) error {
	scenario := sim.DefaultScenario()
	if opts.scenarioPath != "" {
		var err error
		if scenario, err = sim.LoadScenario(opts.scenarioPath); err != nil {
			return err
		}
	}

	cfg := sim.DefaultConfig()
	cfg.TimeStep = opts.timeStep
	cfg.RealTimeFactor = opts.rtf
	cfg.Duration = opts.duration

	s, err := sim.NewSimulator(cfg, scenario, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := transport.Listen(opts.port, logger)
	if err != nil {
		return err
	}
	listener.Start()
	defer listener.Stop()
	logger.Infow("listening for commands", "addr", listener.LocalAddr().String())

	if opts.announce {
		name := opts.name
		if name == "" {
			name = "robotsim-" + uuid.NewString()[:8]
		}
		ann := discovery.NewAnnouncer(name, listener.LocalAddr().Port, scenario.Name, logger)
		if err := ann.Start(); err != nil {
			logger.Warnw("mDNS announce failed, continuing without discovery", "error", err)
		} else {
			defer ann.Stop()
		}
	}

	if opts.wsAddr != "" {
		hub := telemetry.NewHub(s, s, logger)
		s.AddObserver(hub)
		srv := &http.Server{Addr: opts.wsAddr, Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("telemetry server stopped", "error", err)
			}
		}()
		go hub.Run(ctx, 100*time.Millisecond)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Infow("telemetry available", "addr", opts.wsAddr, "path", "/ws")
	}

	go listener.Serve(ctx, s)

	if opts.console {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		printHelp(os.Stdout)
		go func() {
			if runConsole(s, os.Stdin, os.Stdout) {
				cancel()
				return
			}
			logger.Infow("stdin closed, console disabled")
		}()
	}

	metrics, err := s.Run(ctx)
	if err != nil {
		return err
	}
	logger.Infow("run finished",
		"ticks", metrics.Ticks,
		"completed", metrics.CommandsCompleted,
		"rejected", metrics.CommandsRejected,
		"collisions", metrics.Collisions)

	if opts.metricsOut != "" {
		if err := s.ExportMetrics(opts.metricsOut); err != nil {
			return fmt.Errorf("export metrics: %w", err)
		}
		logger.Infow("metrics written", "path", opts.metricsOut)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  move [distance=<m>] [linear_speed=<m/s>]       - Drive straight")
	fmt.Fprintln(out, "  turn [angle=<rad>] [angular_speed=<rad/s>]     - Rotate in place")
	fmt.Fprintln(out, "  stop [duration=<s>]                            - Brake and hold")
	fmt.Fprintln(out, "  state                                          - Print the current snapshot")
	fmt.Fprintln(out, "  metrics                                        - Print counters")
	fmt.Fprintln(out, "  reset                                          - Back to the scenario start")
	fmt.Fprintln(out, "  quit                                           - Exit")
	fmt.Fprintln(out)
}

// runConsole reads commands until quit or EOF. It reports whether the
// user asked to quit; EOF leaves the other ingress paths serving.
func runConsole(s *sim.Simulator, in io.Reader, out io.Writer) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !handleLine(s, scanner.Text(), out) {
			return true
		}
	}
	return false
}

// handleLine executes one console line and reports whether to keep reading.
func handleLine(s *sim.Simulator, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	switch strings.ToLower(strings.Fields(line)[0]) {
	case "quit", "exit":
		return false
	case "state":
		printJSON(out, s.Snapshot())
	case "metrics":
		printJSON(out, s.Metrics())
	case "reset":
		s.Reset()
		fmt.Fprintln(out, "reset")
	case "help":
		printHelp(out)
	default:
		m, err := command.ParseLine(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return true
		}
		c, err := s.SubmitMessage(m)
		if err != nil {
			fmt.Fprintf(out, "rejected: %v\n", err)
			return true
		}
		fmt.Fprintf(out, "queued %s: %s\n", c.ID(), c.Describe())
	}
	return true
}

func printJSON(out io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))
}
