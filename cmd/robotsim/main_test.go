package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/diffdrive-sim/internal/sim"
)

func newSim(t *testing.T) *sim.Simulator {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.RealTimeFactor = 0
	s, err := sim.NewSimulator(cfg, sim.DefaultScenario(), golog.NewTestLogger(t))
	require.NoError(t, err)
	return s
}

func TestHandleLine(t *testing.T) {
	s := newSim(t)
	var out bytes.Buffer

	assert.True(t, handleLine(s, "move distance=1", &out))
	assert.Contains(t, out.String(), "move forward 1.0 m")

	out.Reset()
	assert.True(t, handleLine(s, "fly height=3", &out))
	assert.Contains(t, out.String(), "rejected")

	out.Reset()
	assert.True(t, handleLine(s, "move 1", &out))
	assert.Contains(t, out.String(), "error")

	s.Step()
	out.Reset()
	assert.True(t, handleLine(s, "state", &out))
	assert.Contains(t, out.String(), `"kind": "move"`)

	out.Reset()
	assert.True(t, handleLine(s, "reset", &out))
	assert.Equal(t, 1, s.Metrics().Resets)

	assert.True(t, handleLine(s, "   ", &out))
	assert.False(t, handleLine(s, "QUIT", &out))
}

func TestRunConsoleStopsOnQuit(t *testing.T) {
	s := newSim(t)
	var out bytes.Buffer
	assert.True(t, runConsole(s, strings.NewReader("stop\nquit\nmove distance=1\n"), &out))

	assert.Equal(t, 1, s.Metrics().CommandsReceived)
}

func TestRunConsoleEOFKeepsServing(t *testing.T) {
	s := newSim(t)
	var out bytes.Buffer
	assert.False(t, runConsole(s, strings.NewReader(""), &out))
	assert.False(t, runConsole(s, strings.NewReader("move distance=1\n"), &out))
	assert.Equal(t, 1, s.Metrics().CommandsReceived)
}
