// Package scheduler arbitrates which command owns the robot's actuators.
package scheduler

import (
	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
)

// Outcome describes what Submit did with a command.
type Outcome int

const (
	// Activated means the command took an idle actuator.
	Activated Outcome = iota
	// Preempted means the command displaced a lower-priority active command.
	Preempted
	// Queued means the command waits in the pending set.
	Queued
	// Rejected means the command was nil.
	Rejected
)

var outcomeNames = [...]string{"activated", "preempted", "queued", "rejected"}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

type entry struct {
	cmd command.Command
	seq uint64
}

// Scheduler holds one active command and a pending set. It is not safe for
// concurrent use; the simulation loop owns it.
type Scheduler struct {
	logger  golog.Logger
	active  command.Command
	pending []entry
	seq     uint64
}

// New creates an idle scheduler.
func New(logger golog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Submit hands a command to the scheduler. A command with strictly higher
// priority than the active one replaces it; the replaced command is
// discarded.
func (s *Scheduler) Submit(c command.Command) Outcome {
	if c == nil {
		return Rejected
	}
	switch {
	case s.active == nil:
		s.active = c
		s.logger.Debugw("command activated", "id", c.ID(), "kind", c.Kind(), "priority", c.Priority())
		return Activated
	case c.Priority() > s.active.Priority():
		s.logger.Infow("command preempted",
			"id", s.active.ID(), "kind", s.active.Kind(),
			"by", c.ID(), "by_kind", c.Kind(), "priority", c.Priority())
		s.active = c
		return Preempted
	default:
		s.seq++
		s.pending = append(s.pending, entry{cmd: c, seq: s.seq})
		s.logger.Debugw("command queued", "id", c.ID(), "kind", c.Kind(), "pending", len(s.pending))
		return Queued
	}
}

// Tick runs one control step of the active command, promoting from the
// pending set first if the actuator is idle. It returns the command that
// ran, or nil, and whether that command completed. When the last command
// completes the robot's forces are zeroed so it coasts.
func (s *Scheduler) Tick(r command.Robot, dt float64) (command.Command, bool) {
	if s.active == nil {
		s.promote()
	}
	c := s.active
	if c == nil {
		return nil, false
	}

	if !execute(c, r, dt) {
		return c, false
	}

	s.logger.Infow("command completed", "id", c.ID(), "kind", c.Kind(), "description", c.Describe())
	s.active = nil
	if !s.promote() {
		r.SetChassisForces(0, 0)
	}
	return c, true
}

// execute dispatches to the concrete command.
func execute(c command.Command, r command.Robot, dt float64) bool {
	switch c := c.(type) {
	case *command.Move:
		return c.Execute(r, dt)
	case *command.Turn:
		return c.Execute(r, dt)
	case *command.Stop:
		return c.Execute(r, dt)
	default:
		panic("scheduler: unhandled command type")
	}
}

// promote moves the highest-priority pending command to active. Among equal
// priorities the earliest submission wins.
func (s *Scheduler) promote() bool {
	if len(s.pending) == 0 {
		return false
	}
	best := 0
	for i, e := range s.pending[1:] {
		b := s.pending[best]
		if e.cmd.Priority() > b.cmd.Priority() ||
			(e.cmd.Priority() == b.cmd.Priority() && e.seq < b.seq) {
			best = i + 1
		}
	}
	s.active = s.pending[best].cmd
	s.pending = append(s.pending[:best], s.pending[best+1:]...)
	s.logger.Debugw("command promoted", "id", s.active.ID(), "kind", s.active.Kind(), "pending", len(s.pending))
	return true
}

// Active returns the command that currently owns the actuators.
func (s *Scheduler) Active() command.Command {
	return s.active
}

// Pending returns the waiting commands in submission order.
func (s *Scheduler) Pending() []command.Command {
	out := make([]command.Command, len(s.pending))
	for i, e := range s.pending {
		out[i] = e.cmd
	}
	return out
}

// Len returns the number of active and pending commands.
func (s *Scheduler) Len() int {
	n := len(s.pending)
	if s.active != nil {
		n++
	}
	return n
}

// Clear drops every command and returns how many were dropped.
func (s *Scheduler) Clear() int {
	n := s.Len()
	s.active = nil
	s.pending = nil
	return n
}
