package command

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// StopGains tunes the braking law.
type StopGains struct {
	KDLinear          float64 `json:"kd_linear"`
	KDAngular         float64 `json:"kd_angular"`
	VelocityTolerance float64 `json:"velocity_tolerance"`
}

// DefaultStopGains returns the reference braking tuning.
func DefaultStopGains() StopGains {
	return StopGains{KDLinear: 25, KDAngular: 15, VelocityTolerance: 0.01}
}

// StopPhase is the braking state machine position.
type StopPhase int

const (
	PhaseBraking StopPhase = iota
	PhaseHolding
	PhaseDone
)

var stopPhaseNames = [...]string{"braking", "holding", "done"}

func (p StopPhase) String() string {
	if p >= 0 && int(p) < len(stopPhaseNames) {
		return stopPhaseNames[p]
	}
	return "unknown"
}

// Stop brakes to rest and optionally holds for a duration.
type Stop struct {
	base
	gains    StopGains
	duration float64 // s
	phase    StopPhase
	held     float64 // s spent holding
}

// NewStop creates a stop command. A zero duration completes as soon as the
// robot is at rest.
func NewStop(duration float64, gains StopGains, opts ...Option) (*Stop, error) {
	if !finite(duration) || duration < 0 {
		return nil, fmt.Errorf("stop duration=%v: %w", duration, ErrInvalidParam)
	}
	return &Stop{
		base:     newBase(PriorityStop, opts),
		gains:    gains,
		duration: duration,
	}, nil
}

func (s *Stop) Kind() Kind { return KindStop }

// Phase returns the current phase.
func (s *Stop) Phase() StopPhase { return s.phase }

// Duration returns the hold duration in seconds.
func (s *Stop) Duration() float64 { return s.duration }

// Execute applies one braking step.
func (s *Stop) Execute(r Robot, dt float64) bool {
	if s.completed {
		return true
	}
	v := r.ChassisVelocities()
	tol := s.gains.VelocityTolerance

	if math.Abs(v.Linear) > tol || math.Abs(v.Angular) > tol {
		r.SetChassisForces(-s.gains.KDLinear*v.Linear, -s.gains.KDAngular*v.Angular)
		return false
	}

	r.SetChassisForces(0, 0)
	switch s.phase {
	case PhaseBraking:
		if s.duration <= 0 {
			s.finish()
			return true
		}
		s.phase = PhaseHolding
	case PhaseHolding:
		s.held += dt
	}
	if s.held >= s.duration {
		s.finish()
	}
	return s.completed
}

func (s *Stop) finish() {
	s.phase = PhaseDone
	s.completed = true
}

// Describe returns a human-readable summary.
func (s *Stop) Describe() string {
	if s.duration > 0 {
		return fmt.Sprintf("stop and hold for %g s", s.duration)
	}
	return "full stop"
}

// TargetPose is the current pose.
func (s *Stop) TargetPose(r Robot) (core.Pose, bool) {
	return r.Position(), true
}
