// Package core defines domain models for the differential-drive simulator.
package core

import (
	"fmt"
	"math"
)

// Pose is a planar position (metres) and heading (radians, [0, 2π)).
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// String formats the pose with the heading in degrees.
func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1f°)", p.X, p.Y, p.Theta*180/math.Pi)
}

// DistanceTo returns the Euclidean distance between the positions of p and q.
func (p Pose) DistanceTo(q Pose) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Dimensions is a rectangular footprint in metres.
// For the robot Length runs along the heading; for obstacles it is the Y extent.
type Dimensions struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// Velocities holds chassis-level speeds.
type Velocities struct {
	Linear  float64 `json:"linear"`  // m/s, signed along heading
	Angular float64 `json:"angular"` // rad/s, counter-clockwise positive
}

// WheelSpeeds holds derived left/right wheel surface speeds (m/s).
type WheelSpeeds struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Forces holds the applied chassis actuation.
type Forces struct {
	Linear  float64 `json:"linear"`  // N
	Angular float64 `json:"angular"` // N·m
}
