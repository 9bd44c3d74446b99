// Package physics integrates differential-drive rigid-body motion and
// detects penetration of static obstacles.
package physics

import (
	"fmt"

	"go.uber.org/multierr"
)

// Params holds the physical constants of a RigidBody.
type Params struct {
	Mass            float64 `json:"mass"`              // kg
	MaxDriveForce   float64 `json:"max_drive_force"`   // N
	MaxTurnTorque   float64 `json:"max_turn_torque"`   // N·m
	MaxLinearSpeed  float64 `json:"max_linear_speed"`  // m/s
	MaxAngularSpeed float64 `json:"max_angular_speed"` // rad/s
	LinearDrag      float64 `json:"linear_drag"`       // N per m/s
	AngularDrag     float64 `json:"angular_drag"`      // N·m per rad/s
	HitboxScale     float64 `json:"hitbox_scale"`      // contact footprint relative to the body
	NoiseFloor      float64 `json:"noise_floor"`       // speeds below this are treated as rest
}

// DefaultParams returns the reference chassis.
func DefaultParams() Params {
	return Params{
		Mass:            5.0,
		MaxDriveForce:   15.0,
		MaxTurnTorque:   10.0,
		MaxLinearSpeed:  2.0,
		MaxAngularSpeed: 4.0,
		LinearDrag:      2.5,
		AngularDrag:     1.5,
		HitboxScale:     0.2,
		NoiseFloor:      1e-6,
	}
}

// Validate reports every out-of-range field.
func (p Params) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if v <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}

	positive("mass", p.Mass)
	nonNegative("max drive force", p.MaxDriveForce)
	nonNegative("max turn torque", p.MaxTurnTorque)
	nonNegative("max linear speed", p.MaxLinearSpeed)
	nonNegative("max angular speed", p.MaxAngularSpeed)
	nonNegative("linear drag", p.LinearDrag)
	nonNegative("angular drag", p.AngularDrag)
	positive("hitbox scale", p.HitboxScale)
	nonNegative("noise floor", p.NoiseFloor)
	return err
}

// MomentOfInertia returns the inertia of a uniform width×length rectangle
// rotating about its centre.
func (p Params) MomentOfInertia(width, length float64) float64 {
	return p.Mass * (width*width + length*length) / 12
}
