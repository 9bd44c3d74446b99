package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Clamp saturates v to [lo, hi].
func Clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampAbs saturates v to [-limit, limit].
func ClampAbs[T constraints.Float](v, limit T) T {
	return Clamp(v, -limit, limit)
}

// WrapAngle maps any angle into [0, 2π).
func WrapAngle(theta float64) float64 {
	w := math.Mod(theta, TwoPi)
	if w < 0 {
		w += TwoPi
	}
	// math.Mod of a tiny negative value can round back up to 2π.
	if w >= TwoPi {
		w = 0
	}
	return w
}

// AngleDiff returns the shortest signed rotation from `from` to `to`, in (-π, π].
func AngleDiff(to, from float64) float64 {
	d := WrapAngle(to - from)
	if d > math.Pi {
		d -= TwoPi
	}
	return d
}

// Sign returns -1 for negative values and +1 otherwise.
func Sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
