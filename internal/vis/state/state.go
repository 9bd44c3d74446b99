// Package state manages the visualization state.
package state

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
)

// EventLogSize is the number of events kept for display.
const EventLogSize = 64

// State holds all visualization state. It is owned by the UI goroutine.
type State struct {
	Sim      *sim.Simulator
	Playback *PlaybackState
	Events   *EventLog
	Follow   bool // keep the camera centred on the robot

	// Snapshot is the state as of the last Tick.
	Snapshot sim.Snapshot

	goal   *r2.Point // deferred click-to-go target
	queued int       // messages submitted since the last step
}

// NewState wraps a simulator for display.
func NewState(s *sim.Simulator) *State {
	return &State{
		Sim:      s,
		Playback: NewPlaybackState(s.Config().TimeStep),
		Events:   NewEventLog(EventLogSize),
		Snapshot: s.Snapshot(),
	}
}

// Tick runs the steps due since the previous tick and refreshes Snapshot.
// It returns the number of steps taken.
func (s *State) Tick() int {
	n := s.Playback.Advance()
	for i := 0; i < n; i++ {
		s.Sim.Step()
	}
	if n > 0 {
		s.queued = 0
	}
	s.Snapshot = s.Sim.Snapshot()

	if s.goal != nil && s.idle() {
		g := *s.goal
		s.goal = nil
		s.goTo(g.X, g.Y)
	}
	return n
}

// idle reports whether no command is queued, active or pending and the
// robot is at rest.
func (s *State) idle() bool {
	snap := s.Snapshot
	tol := s.Sim.Config().Gains.Stop.VelocityTolerance
	return s.queued == 0 && snap.Active == nil && len(snap.Pending) == 0 &&
		math.Abs(snap.Velocities.Linear) <= tol && math.Abs(snap.Velocities.Angular) <= tol
}

// Goal returns the click-to-go target waiting for the robot to settle.
func (s *State) Goal() (r2.Point, bool) {
	if s.goal == nil {
		return r2.Point{}, false
	}
	return *s.goal, true
}

// Submit hands a command message to the simulator. Rejections are logged
// to Events since the simulator reports them only through its return value.
func (s *State) Submit(m command.Message) {
	if _, err := s.Sim.SubmitMessage(m); err != nil {
		s.Events.Add(s.Sim.Time(), "rejected %s: %v", m.Command, err)
		return
	}
	s.queued++
}

// Reset re-places the robot at the scenario start.
func (s *State) Reset() {
	s.Sim.Reset()
	s.goal = nil
	s.queued = 0
	s.Snapshot = s.Sim.Snapshot()
	s.Events.Add(s.Snapshot.Time, "reset")
}
