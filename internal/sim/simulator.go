// Package sim runs the control loop: commands arrive through a hand-off
// queue, the scheduler drives the active command and the rigid body
// integrates, one fixed step at a time.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/physics"
	"github.com/elektrokombinacija/diffdrive-sim/internal/scheduler"
)

// ErrInboxFull is returned when the hand-off queue cannot take a command.
var ErrInboxFull = errors.New("command inbox full")

// Metrics collects counters during a run.
type Metrics struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Ticks         int       `json:"ticks"`
	SimulatedTime float64   `json:"simulated_time"`

	CommandsReceived  int `json:"commands_received"`
	CommandsRejected  int `json:"commands_rejected"`
	CommandsDropped   int `json:"commands_dropped"`
	CommandsPreempted int `json:"commands_preempted"`
	CommandsCompleted int `json:"commands_completed"`

	Collisions    int     `json:"collisions"`
	CollisionTime float64 `json:"collision_time"` // simulated time of the last collision
	Resets        int     `json:"resets"`
}

// Observer receives simulation events on the simulation goroutine.
// Implementations must not call back into the Simulator.
type Observer interface {
	OnSubmitted(c command.Command, outcome scheduler.Outcome, at float64)
	OnCompleted(c command.Command, at float64)
	OnCollision(pose core.Pose, obstacle core.Obstacle, at float64)
}

// Simulator owns the body and the scheduler. Only the goroutine calling
// Step or Run mutates them; Submit is safe from any goroutine.
type Simulator struct {
	mu sync.Mutex

	config   Config
	scenario Scenario
	logger   golog.Logger

	body      *physics.RigidBody
	sched     *scheduler.Scheduler
	workspace *core.Workspace
	inbox     chan command.Command
	observers []Observer

	currentTime float64
	metrics     Metrics
}

// NewSimulator validates the configuration and places the robot.
func NewSimulator(config Config, scenario Scenario, logger golog.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	body, err := physics.NewRigidBody(scenario.Start, scenario.Body, config.Body, logger)
	if err != nil {
		return nil, err
	}
	ws := scenario.Workspace()
	body.SetObstacles(ws.Obstacles())

	return &Simulator{
		config:    config,
		scenario:  scenario,
		logger:    logger,
		body:      body,
		sched:     scheduler.New(logger),
		workspace: ws,
		inbox:     make(chan command.Command, config.InboxSize),
	}, nil
}

// AddObserver registers an observer. Call before Run.
func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Submit queues a command for the next tick without blocking.
func (s *Simulator) Submit(c command.Command) error {
	if c == nil {
		return fmt.Errorf("nil command: %w", command.ErrInvalidParam)
	}
	select {
	case s.inbox <- c:
		s.count(func(m *Metrics) { m.CommandsReceived++ })
		return nil
	default:
		s.count(func(m *Metrics) { m.CommandsDropped++ })
		s.logger.Warnw("inbox full, dropping command", "id", c.ID(), "kind", c.Kind())
		return ErrInboxFull
	}
}

// SubmitMessage builds a command from its wire form and queues it.
// Malformed messages are logged and counted, never fatal.
func (s *Simulator) SubmitMessage(m command.Message) (command.Command, error) {
	c, err := command.FromMessage(m, s.config.Gains)
	if err != nil {
		s.count(func(m *Metrics) { m.CommandsRejected++ })
		s.logger.Warnw("rejected command message", "command", m.Command, "error", err)
		return nil, err
	}
	if err := s.Submit(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Simulator) count(fn func(*Metrics)) {
	s.mu.Lock()
	fn(&s.metrics)
	s.mu.Unlock()
}

// Step advances the simulation by one time step.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

func (s *Simulator) step() {
	dt := s.config.TimeStep

	s.drainInbox()

	if c, done := s.sched.Tick(s.body, dt); done {
		s.metrics.CommandsCompleted++
		for _, o := range s.observers {
			o.OnCompleted(c, s.currentTime)
		}
	}

	wasCollided := s.body.Collided()
	s.body.Update(dt)
	s.currentTime += dt
	s.metrics.Ticks++
	s.metrics.SimulatedTime = s.currentTime

	if !wasCollided && s.body.Collided() {
		s.metrics.Collisions++
		s.metrics.CollisionTime = s.currentTime
		obstacle, _ := s.body.CollidedWith()
		for _, o := range s.observers {
			o.OnCollision(s.body.Position(), obstacle, s.currentTime)
		}
	}
}

func (s *Simulator) drainInbox() {
	for {
		select {
		case c := <-s.inbox:
			outcome := s.sched.Submit(c)
			if outcome == scheduler.Preempted {
				s.metrics.CommandsPreempted++
			}
			for _, o := range s.observers {
				o.OnSubmitted(c, outcome, s.currentTime)
			}
		default:
			return
		}
	}
}

// RunFor steps the simulation for the given simulated seconds without
// throttling.
func (s *Simulator) RunFor(seconds float64) {
	steps := int(seconds/s.config.TimeStep + 0.5)
	for i := 0; i < steps; i++ {
		s.Step()
	}
}

// Run executes the loop until ctx is cancelled or the configured duration
// elapses.
func (s *Simulator) Run(ctx context.Context) (*Metrics, error) {
	s.count(func(m *Metrics) { m.StartTime = time.Now() })
	s.logger.Infow("simulation started",
		"scenario", s.scenario.Name, "time_step", s.config.TimeStep, "real_time_factor", s.config.RealTimeFactor)

	var tick <-chan time.Time
	if s.config.RealTimeFactor > 0 {
		interval := time.Duration(s.config.TimeStep / s.config.RealTimeFactor * float64(time.Second))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for s.config.Duration == 0 || s.Time() < s.config.Duration {
		if tick != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-tick:
			}
		} else if ctx.Err() != nil {
			break loop
		}
		s.Step()
	}

	s.mu.Lock()
	s.metrics.EndTime = time.Now()
	m := s.metrics
	s.mu.Unlock()

	s.logger.Infow("simulation stopped", "ticks", m.Ticks, "simulated_time", m.SimulatedTime)
	return &m, nil
}

// Reset re-places the robot at the scenario start, clears every command
// and the collided state. Metrics other than Resets are kept.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.inbox) > 0 {
		<-s.inbox
	}
	dropped := s.sched.Clear()
	s.body.Reset(s.scenario.Start)
	s.metrics.Resets++
	s.logger.Infow("simulation reset", "dropped_commands", dropped, "pose", s.scenario.Start.String())
}

// Cancel drops the queued, active and pending commands and zeroes the
// chassis forces. The body keeps its pose and velocity and coasts.
func (s *Simulator) Cancel() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for len(s.inbox) > 0 {
		<-s.inbox
		dropped++
	}
	dropped += s.sched.Clear()
	s.body.SetChassisForces(0, 0)
	s.logger.Infow("commands cancelled", "dropped_commands", dropped)
	return dropped
}

// Time returns the simulated time in seconds.
func (s *Simulator) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

// Config returns the simulator configuration.
func (s *Simulator) Config() Config {
	return s.config
}

// Workspace returns the static obstacle workspace.
func (s *Simulator) Workspace() *core.Workspace {
	return s.workspace
}

// Scenario returns the scenario the simulator was built from.
func (s *Simulator) Scenario() Scenario {
	return s.scenario
}

// Metrics returns current simulation metrics.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
