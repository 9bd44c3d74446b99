package physics

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// RigidBody is a differential-drive chassis driven by a clamped force and
// torque. Once it collides it stops integrating until Reset.
type RigidBody struct {
	params  Params
	logger  golog.Logger
	dims    core.Dimensions
	inertia float64

	pose   core.Pose
	linVel float64
	angVel float64
	force  float64
	torque float64

	obstacles    []core.Obstacle
	collided     bool
	collidedWith core.Obstacle
}

// NewRigidBody creates a body at rest at pose.
func NewRigidBody(pose core.Pose, dims core.Dimensions, params Params, logger golog.Logger) (*RigidBody, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid body params: %w", err)
	}
	if dims.Width <= 0 || dims.Length <= 0 {
		return nil, fmt.Errorf("invalid body dimensions %.3fx%.3f", dims.Width, dims.Length)
	}
	b := &RigidBody{
		params:  params,
		logger:  logger,
		dims:    dims,
		inertia: params.MomentOfInertia(dims.Width, dims.Length),
	}
	b.Reset(pose)
	return b, nil
}

// SetChassisForces sets the applied force and torque, saturating each at
// its limit. It has no effect on a collided body.
func (b *RigidBody) SetChassisForces(force, torque float64) {
	if b.collided {
		return
	}
	b.force = core.ClampAbs(force, b.params.MaxDriveForce)
	b.torque = core.ClampAbs(torque, b.params.MaxTurnTorque)
}

// Update advances the body by dt seconds.
func (b *RigidBody) Update(dt float64) {
	if b.collided || dt <= 0 {
		return
	}

	netForce := b.force - b.linVel*b.params.LinearDrag
	netTorque := b.torque - b.angVel*b.params.AngularDrag
	b.linVel += netForce / b.params.Mass * dt
	b.angVel += netTorque / b.inertia * dt
	b.linVel = core.ClampAbs(b.linVel, b.params.MaxLinearSpeed)
	b.angVel = core.ClampAbs(b.angVel, b.params.MaxAngularSpeed)

	if math.Abs(b.linVel) < b.params.NoiseFloor && math.Abs(b.angVel) < b.params.NoiseFloor {
		return
	}

	steps := b.substeps(dt)
	stepDt := dt / float64(steps)
	for i := 0; i < steps; i++ {
		prev := b.pose
		b.pose.X += b.linVel * math.Cos(prev.Theta) * stepDt
		b.pose.Y += b.linVel * math.Sin(prev.Theta) * stepDt
		b.pose.Theta = core.WrapAngle(prev.Theta + b.angVel*stepDt)

		if o, hit := FindCollision(b.Hitbox(), b.obstacles); hit {
			b.logger.Warnw("collision, emergency stop", "pose", b.pose.String(), "obstacle", o.String())
			b.pose = prev
			b.linVel, b.angVel = 0, 0
			b.force, b.torque = 0, 0
			b.collided = true
			b.collidedWith = o
			return
		}
	}
}

// substeps bounds each sub-step's travel to a quarter of the body length.
func (b *RigidBody) substeps(dt float64) int {
	dist := math.Abs(b.linVel) * dt
	n := int(math.Ceil(dist / (b.dims.Length / 4)))
	if n < 1 {
		return 1
	}
	return n
}

// Hitbox returns the scaled-down contact footprint at the current pose.
func (b *RigidBody) Hitbox() Hitbox {
	s := b.params.HitboxScale
	return NewHitbox(b.pose, b.dims.Width*s, b.dims.Length*s)
}

// Reset re-places the body at pose, at rest, and clears the collided state.
func (b *RigidBody) Reset(pose core.Pose) {
	pose.Theta = core.WrapAngle(pose.Theta)
	b.pose = pose
	b.linVel, b.angVel = 0, 0
	b.force, b.torque = 0, 0
	b.collided = false
	b.collidedWith = core.Obstacle{}
}

// SetObstacles replaces the obstacle set consulted by Update.
func (b *RigidBody) SetObstacles(obstacles []core.Obstacle) {
	b.obstacles = append([]core.Obstacle(nil), obstacles...)
}

// Obstacles returns the current obstacle set.
func (b *RigidBody) Obstacles() []core.Obstacle {
	return append([]core.Obstacle(nil), b.obstacles...)
}

func (b *RigidBody) Position() core.Pose         { return b.pose }
func (b *RigidBody) Dimensions() core.Dimensions { return b.dims }
func (b *RigidBody) Params() Params              { return b.params }
func (b *RigidBody) MomentOfInertia() float64    { return b.inertia }
func (b *RigidBody) Collided() bool              { return b.collided }
func (b *RigidBody) ChassisForces() core.Forces {
	return core.Forces{Linear: b.force, Angular: b.torque}
}
func (b *RigidBody) ChassisVelocities() core.Velocities {
	return core.Velocities{Linear: b.linVel, Angular: b.angVel}
}

// CollidedWith returns the obstacle that stopped the body, if any.
func (b *RigidBody) CollidedWith() (core.Obstacle, bool) {
	return b.collidedWith, b.collided
}

// WheelSpeeds derives left and right wheel speeds from chassis velocities.
func (b *RigidBody) WheelSpeeds() core.WheelSpeeds {
	return wheels(b.linVel, b.angVel, b.dims.Width)
}

// TargetWheelSpeeds estimates steady-state wheel speeds under the applied
// force and torque, where drag balances actuation.
func (b *RigidBody) TargetWheelSpeeds() core.WheelSpeeds {
	var v, w float64
	if b.params.LinearDrag > 0 {
		v = b.force / b.params.LinearDrag
	}
	if b.params.AngularDrag > 0 {
		w = b.torque / b.params.AngularDrag
	}
	v = core.ClampAbs(v, b.params.MaxLinearSpeed)
	w = core.ClampAbs(w, b.params.MaxAngularSpeed)
	return wheels(v, w, b.dims.Width)
}

func wheels(v, w, width float64) core.WheelSpeeds {
	return core.WheelSpeeds{
		Left:  v - w*width/2,
		Right: v + w*width/2,
	}
}
