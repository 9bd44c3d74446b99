// Package observer feeds simulation events into the visualization state.
package observer

import (
	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/scheduler"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
	"github.com/elektrokombinacija/diffdrive-sim/internal/vis/state"
)

// EventLogObserver adapts an EventLog to the sim.Observer interface.
type EventLogObserver struct {
	log *state.EventLog
}

var _ sim.Observer = (*EventLogObserver)(nil)

// NewEventLogObserver creates an observer writing into log.
func NewEventLogObserver(log *state.EventLog) *EventLogObserver {
	return &EventLogObserver{log: log}
}

// Attach creates an observer for st.Events and registers it with st.Sim.
func Attach(st *state.State) *EventLogObserver {
	o := NewEventLogObserver(st.Events)
	st.Sim.AddObserver(o)
	return o
}

// OnSubmitted records how the scheduler handled a new command.
func (o *EventLogObserver) OnSubmitted(c command.Command, outcome scheduler.Outcome, at float64) {
	o.log.Add(at, "%s: %s (priority %d)", outcome, c.Describe(), c.Priority())
}

// OnCompleted records a finished command.
func (o *EventLogObserver) OnCompleted(c command.Command, at float64) {
	o.log.Add(at, "completed: %s", c.Describe())
}

// OnCollision records the pose and obstacle of a collision.
func (o *EventLogObserver) OnCollision(pose core.Pose, obstacle core.Obstacle, at float64) {
	o.log.Add(at, "collision at %s with %s", pose, obstacle)
}
