package state

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// Quick is a canned command bound to a key or toolbar button.
type Quick int

const (
	QuickForward Quick = iota
	QuickBackward
	QuickLeft
	QuickRight
	QuickStop
)

const (
	quickDistance = 0.5
	quickAngle    = math.Pi / 2
	stopHold      = 0.5
)

// Message returns the wire form of q. Continuous variants drive until
// preempted; QuickStop holds briefly in both forms.
func (q Quick) Message(continuous bool) command.Message {
	var m command.Message
	switch q {
	case QuickForward, QuickBackward:
		m = command.Message{Command: "move", Params: map[string]float64{}}
		sign := 1.0
		if q == QuickBackward {
			sign = -1
		}
		if continuous {
			m.Params["linear_speed"] = sign * command.DefaultLinearSpeed
		} else {
			m.Params["distance"] = sign * quickDistance
		}
	case QuickLeft, QuickRight:
		m = command.Message{Command: "turn", Params: map[string]float64{}}
		sign := 1.0
		if q == QuickRight {
			sign = -1
		}
		if continuous {
			m.Params["angular_speed"] = sign * command.DefaultAngularSpeed
		} else {
			m.Params["angle"] = sign * quickAngle
		}
	default:
		m = command.Message{Command: "stop", Params: map[string]float64{"duration": stopHold}}
	}
	return m
}

// Quick submits a canned command. It abandons a deferred click-to-go.
func (s *State) Quick(q Quick, continuous bool) {
	s.goal = nil
	s.Submit(q.Message(continuous))
}

// GoToMessages returns a turn toward (x, y) followed by a move onto it,
// both at drive priority so they run in order. The turn is left out when
// already facing the point; a point closer than the move tolerance yields
// nothing.
func GoToMessages(from core.Pose, x, y float64) []command.Message {
	dx, dy := x-from.X, y-from.Y
	dist := math.Hypot(dx, dy)
	if dist < command.DefaultMoveGains().DistanceTolerance {
		return nil
	}
	var msgs []command.Message
	angle := core.AngleDiff(math.Atan2(dy, dx), from.Theta)
	if math.Abs(angle) >= command.DefaultTurnGains().AngleTolerance {
		msgs = append(msgs, command.Message{Command: "turn", Params: map[string]float64{"angle": angle}})
	}
	return append(msgs, command.Message{Command: "move", Params: map[string]float64{"distance": dist}})
}

// GoTo brings the robot from its current pose to (x, y) with a turn and a
// move. Both capture their start when they first run, so they are planned
// from a settled robot: when busy, GoTo cancels every command, brakes, and
// plans from wherever the robot comes to rest.
func (s *State) GoTo(x, y float64) {
	if !s.idle() {
		s.Sim.Cancel()
		s.queued = 0
		s.goal = &r2.Point{X: x, Y: y}
		s.Submit(command.Message{Command: "stop"})
		s.Events.Add(s.Snapshot.Time, "stopping before go to (%.2f, %.2f)", x, y)
		return
	}
	s.goTo(x, y)
}

func (s *State) goTo(x, y float64) {
	msgs := GoToMessages(s.Snapshot.Pose, x, y)
	for _, m := range msgs {
		s.Submit(m)
	}
	if len(msgs) > 0 {
		s.Events.Add(s.Snapshot.Time, "go to (%.2f, %.2f)", x, y)
	}
}
