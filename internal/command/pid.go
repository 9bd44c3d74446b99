package command

import (
	"math"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// integrator is a clamped error accumulator.
type integrator struct {
	sum   float64
	limit float64
}

// add accumulates err·dt and saturates the sum.
func (i *integrator) add(err, dt float64) float64 {
	i.sum = core.ClampAbs(i.sum+err*dt, i.limit)
	return i.sum
}

// addWithReset is add, except the sum is zeroed while |err| is inside band.
func (i *integrator) addWithReset(err, dt, band float64) float64 {
	i.sum += err * dt
	if math.Abs(err) < band {
		i.sum = 0
	}
	i.sum = core.ClampAbs(i.sum, i.limit)
	return i.sum
}

func (i *integrator) reset() { i.sum = 0 }

func direction(positive bool) string {
	if positive {
		return "forward"
	}
	return "backward"
}

func rotation(ccw bool) string {
	if ccw {
		return "left"
	}
	return "right"
}
