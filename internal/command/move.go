package command

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// MoveGains tunes the Move controller.
type MoveGains struct {
	KP                float64 `json:"kp"`
	KI                float64 `json:"ki"`
	KD                float64 `json:"kd"`
	IntegralLimit     float64 `json:"integral_limit"`
	IntegralResetBand float64 `json:"integral_reset_band"`
	DistanceTolerance float64 `json:"distance_tolerance"`
	VelocityTolerance float64 `json:"velocity_tolerance"`
}

// DefaultMoveGains returns the reference Move tuning.
func DefaultMoveGains() MoveGains {
	return MoveGains{
		KP:                20,
		KI:                2,
		KD:                25,
		IntegralLimit:     2,
		IntegralResetBand: 0.05,
		DistanceTolerance: 0.01,
		VelocityTolerance: 0.01,
	}
}

// Move drives along the current heading, either a fixed distance (PID on
// position with velocity damping) or continuously at a target speed (PI on
// speed).
type Move struct {
	base
	gains    MoveGains
	dir      float64 // +1 forward, -1 backward
	speed    float64 // m/s, unsigned
	distance float64 // m, unsigned
	bounded  bool

	started  bool
	start    core.Pose
	integral integrator
}

// NewMove creates a fixed-distance move. The signs of speed and distance
// each flip direction.
func NewMove(distance, speed float64, gains MoveGains, opts ...Option) (*Move, error) {
	if !finite(distance) || !finite(speed) {
		return nil, fmt.Errorf("move distance=%v speed=%v: %w", distance, speed, ErrInvalidParam)
	}
	if speed == 0 {
		return nil, ErrZeroSpeedDistance
	}
	m := newMove(speed, gains, opts)
	if distance < 0 {
		m.dir = -m.dir
	}
	m.distance = math.Abs(distance)
	m.bounded = true
	return m, nil
}

// NewMoveContinuous creates a move that holds speed until preempted.
func NewMoveContinuous(speed float64, gains MoveGains, opts ...Option) (*Move, error) {
	if !finite(speed) {
		return nil, fmt.Errorf("move speed=%v: %w", speed, ErrInvalidParam)
	}
	return newMove(speed, gains, opts), nil
}

func newMove(speed float64, gains MoveGains, opts []Option) *Move {
	return &Move{
		base:     newBase(PriorityDrive, opts),
		gains:    gains,
		dir:      core.Sign(speed),
		speed:    math.Abs(speed),
		integral: integrator{limit: gains.IntegralLimit},
	}
}

func (m *Move) Kind() Kind { return KindMove }

// Distance returns the unsigned target distance and whether the move is bounded.
func (m *Move) Distance() (float64, bool) { return m.distance, m.bounded }

// Speed returns the signed target speed.
func (m *Move) Speed() float64 { return m.dir * m.speed }

// Execute applies one control step.
func (m *Move) Execute(r Robot, dt float64) bool {
	if m.completed {
		return true
	}
	v := r.ChassisVelocities().Linear

	var force float64
	if m.bounded {
		if !m.started {
			m.start = r.Position()
			m.started = true
		}
		traveled := m.start.DistanceTo(r.Position())
		err := m.distance - traveled

		if math.Abs(err) < m.gains.DistanceTolerance && math.Abs(v) < m.gains.VelocityTolerance {
			r.SetChassisForces(0, 0)
			m.completed = true
			return true
		}

		i := m.integral.addWithReset(err, dt, m.gains.IntegralResetBand)
		p := m.gains.KP * err
		d := -m.gains.KD * v * m.dir
		force = (p + m.gains.KI*i + d) * m.dir
	} else {
		err := m.speed - math.Abs(v)
		i := m.integral.add(err, dt)
		force = (m.gains.KP*err + m.gains.KI*i) * m.dir
	}

	r.SetChassisForces(force, 0)
	return false
}

// Describe returns a human-readable summary.
func (m *Move) Describe() string {
	if m.bounded {
		return fmt.Sprintf("move %s %.1f m", direction(m.dir > 0), m.distance)
	}
	return fmt.Sprintf("continuous move %s at %.1f m/s", direction(m.dir > 0), m.speed)
}

// TargetPose projects the target distance along the start heading. Before
// the first Execute the current pose stands in for the start.
func (m *Move) TargetPose(r Robot) (core.Pose, bool) {
	if !m.bounded {
		return core.Pose{}, false
	}
	from := r.Position()
	if m.started {
		from = m.start
	}
	d := m.distance * m.dir
	return core.Pose{
		X:     from.X + d*math.Cos(from.Theta),
		Y:     from.Y + d*math.Sin(from.Theta),
		Theta: from.Theta,
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
