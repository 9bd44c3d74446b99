package command

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// TurnGains tunes the Turn controller.
type TurnGains struct {
	KP                float64 `json:"kp"`
	KI                float64 `json:"ki"`
	KD                float64 `json:"kd"`
	IntegralLimit     float64 `json:"integral_limit"`
	IntegralResetBand float64 `json:"integral_reset_band"`
	AngleTolerance    float64 `json:"angle_tolerance"`
	VelocityTolerance float64 `json:"velocity_tolerance"`
}

// DefaultTurnGains returns the reference Turn tuning.
func DefaultTurnGains() TurnGains {
	return TurnGains{
		KP:                6,
		KI:                1,
		KD:                1.5,
		IntegralLimit:     2,
		IntegralResetBand: 0.05,
		AngleTolerance:    0.01,
		VelocityTolerance: 0.01,
	}
}

// Turn rotates in place, either by a fixed angle toward a target heading or
// continuously at a target angular speed.
type Turn struct {
	base
	gains   TurnGains
	dir     float64 // +1 counter-clockwise (left), -1 clockwise (right)
	speed   float64 // rad/s, unsigned
	angle   float64 // rad, unsigned
	bounded bool

	started  bool
	start    float64
	target   float64
	integral integrator
}

// NewTurn creates a fixed-angle turn. The signs of speed and angle each
// flip direction; positive is counter-clockwise.
func NewTurn(angle, speed float64, gains TurnGains, opts ...Option) (*Turn, error) {
	if !finite(angle) || !finite(speed) {
		return nil, fmt.Errorf("turn angle=%v speed=%v: %w", angle, speed, ErrInvalidParam)
	}
	if speed == 0 {
		return nil, ErrZeroSpeedAngle
	}
	t := newTurn(speed, gains, opts)
	if angle < 0 {
		t.dir = -t.dir
	}
	t.angle = math.Abs(angle)
	t.bounded = true
	return t, nil
}

// NewTurnContinuous creates a turn that holds angular speed until preempted.
func NewTurnContinuous(speed float64, gains TurnGains, opts ...Option) (*Turn, error) {
	if !finite(speed) {
		return nil, fmt.Errorf("turn speed=%v: %w", speed, ErrInvalidParam)
	}
	return newTurn(speed, gains, opts), nil
}

func newTurn(speed float64, gains TurnGains, opts []Option) *Turn {
	return &Turn{
		base:     newBase(PriorityDrive, opts),
		gains:    gains,
		dir:      core.Sign(speed),
		speed:    math.Abs(speed),
		integral: integrator{limit: gains.IntegralLimit},
	}
}

func (t *Turn) Kind() Kind { return KindTurn }

// Angle returns the unsigned turn angle and whether the turn is bounded.
func (t *Turn) Angle() (float64, bool) { return t.angle, t.bounded }

// Speed returns the signed target angular speed.
func (t *Turn) Speed() float64 { return t.dir * t.speed }

// headingError is the shortest signed rotation to the target. A target
// exactly opposite the current heading resolves in the commanded direction.
func (t *Turn) headingError(theta float64) float64 {
	err := core.AngleDiff(t.target, theta)
	if math.Abs(err) >= math.Pi-1e-9 {
		return t.dir * math.Pi
	}
	return err
}

// Execute applies one control step.
func (t *Turn) Execute(r Robot, dt float64) bool {
	if t.completed {
		return true
	}
	w := r.ChassisVelocities().Angular

	var torque float64
	if t.bounded {
		if !t.started {
			t.start = r.Position().Theta
			t.target = core.WrapAngle(t.start + t.dir*t.angle)
			t.started = true
		}
		err := t.headingError(r.Position().Theta)

		if math.Abs(err) < t.gains.AngleTolerance && math.Abs(w) < t.gains.VelocityTolerance {
			r.SetChassisForces(0, 0)
			t.completed = true
			return true
		}

		i := t.integral.addWithReset(err, dt, t.gains.IntegralResetBand)
		torque = t.gains.KP*err + t.gains.KI*i - t.gains.KD*w
	} else {
		err := t.speed - math.Abs(w)
		i := t.integral.add(err, dt)
		torque = (t.gains.KP*err + t.gains.KI*i) * t.dir
	}

	r.SetChassisForces(0, torque)
	return false
}

// Describe returns a human-readable summary.
func (t *Turn) Describe() string {
	if t.bounded {
		return fmt.Sprintf("turn %s %.1f° at %.1f rad/s", rotation(t.dir > 0), t.angle*180/math.Pi, t.speed)
	}
	return fmt.Sprintf("continuous turn %s at %.1f rad/s", rotation(t.dir > 0), t.speed)
}

// TargetPose is the current position with the target heading.
func (t *Turn) TargetPose(r Robot) (core.Pose, bool) {
	if !t.bounded {
		return core.Pose{}, false
	}
	p := r.Position()
	target := t.target
	if !t.started {
		target = core.WrapAngle(p.Theta + t.dir*t.angle)
	}
	return core.Pose{X: p.X, Y: p.Y, Theta: target}, true
}
