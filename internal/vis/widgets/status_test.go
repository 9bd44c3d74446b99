package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
)

func lineMap(lines [][2]string) map[string]string {
	m := make(map[string]string, len(lines))
	for _, l := range lines {
		m[l[0]] = l[1]
	}
	return m
}

func TestStatusLines(t *testing.T) {
	snap := sim.Snapshot{
		Time:       1.5,
		Pose:       core.Pose{X: 1, Y: 2},
		Velocities: core.Velocities{Linear: 0.25, Angular: -0.5},
		Wheels:     core.WheelSpeeds{Left: 0.375, Right: 0.125},
	}
	m := lineMap(StatusLines(snap, 1))
	assert.Equal(t, "1.50 s  (x1)", m["time"])
	assert.Equal(t, "0.250 m/s  -0.500 rad/s", m["velocity"])
	assert.Equal(t, "L 0.375  R 0.125", m["wheels"])
	assert.Equal(t, "idle", m["active"])
	assert.Equal(t, "0", m["pending"])
	assert.NotContains(t, m, "collided")

	spec := sim.ObstacleSpec{X: 2, Y: 2, Width: 1, Height: 1}
	snap.Collided = true
	snap.CollidedWith = &spec
	snap.Active = &sim.CommandInfo{Description: "move forward 1.0 m"}
	snap.Pending = []sim.CommandInfo{{}, {}}
	m = lineMap(StatusLines(snap, 2))
	assert.Equal(t, "move forward 1.0 m", m["active"])
	assert.Equal(t, "2", m["pending"])
	assert.Equal(t, spec.Obstacle().String(), m["collided"])
}
