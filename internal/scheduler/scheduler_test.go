package scheduler

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

const dt = 0.01

type fakeRobot struct {
	vel    core.Velocities
	forces core.Forces
	calls  int
}

func (f *fakeRobot) SetChassisForces(force, torque float64) {
	f.forces = core.Forces{Linear: force, Angular: torque}
	f.calls++
}
func (f *fakeRobot) Position() core.Pose                { return core.Pose{} }
func (f *fakeRobot) ChassisVelocities() core.Velocities { return f.vel }
func (f *fakeRobot) Dimensions() core.Dimensions {
	return core.Dimensions{Width: 0.5, Length: 0.5}
}

func newStop(t *testing.T, opts ...command.Option) *command.Stop {
	t.Helper()
	s, err := command.NewStop(0, command.DefaultStopGains(), opts...)
	require.NoError(t, err)
	return s
}

func newCruise(t *testing.T) *command.Move {
	t.Helper()
	m, err := command.NewMoveContinuous(0.5, command.DefaultMoveGains())
	require.NoError(t, err)
	return m
}

func TestIdleTick(t *testing.T) {
	s := New(golog.NewTestLogger(t))
	r := &fakeRobot{}

	c, done := s.Tick(r, dt)
	assert.Nil(t, c)
	assert.False(t, done)
	assert.Equal(t, 0, r.calls, "idle scheduler must not actuate")
	assert.Equal(t, Rejected, s.Submit(nil))
}

func TestSubmitOutcomes(t *testing.T) {
	s := New(golog.NewTestLogger(t))

	move := newCruise(t)
	assert.Equal(t, Activated, s.Submit(move))
	assert.Equal(t, Queued, s.Submit(newCruise(t)), "equal priority queues")
	assert.Equal(t, Preempted, s.Submit(newStop(t)))
	assert.Equal(t, Queued, s.Submit(newStop(t)), "equal priority never preempts")
	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.Pending(), 2)
}

func TestStopPreemptsMove(t *testing.T) {
	s := New(golog.NewTestLogger(t))
	r := &fakeRobot{}

	move := newCruise(t)
	s.Submit(move)
	c, done := s.Tick(r, dt)
	require.Same(t, move, c)
	require.False(t, done)
	require.Greater(t, r.forces.Linear, 0.0, "move should drive forward")

	r.vel.Linear = 0.4
	stop := newStop(t)
	require.Equal(t, Preempted, s.Submit(stop))
	assert.Same(t, stop, s.Active())
	assert.Empty(t, s.Pending(), "preempted command is discarded")

	// The stop brakes until at rest, then the scheduler goes idle without
	// returning to the move.
	c, done = s.Tick(r, dt)
	assert.Same(t, stop, c)
	assert.False(t, done)
	assert.Less(t, r.forces.Linear, 0.0)

	r.vel.Linear = 0
	c, done = s.Tick(r, dt)
	assert.Same(t, stop, c)
	assert.True(t, done)
	assert.Nil(t, s.Active())

	calls := r.calls
	c, _ = s.Tick(r, dt)
	assert.Nil(t, c)
	assert.Equal(t, calls, r.calls)
	assert.Equal(t, core.Forces{}, r.forces)
}

func TestPromotionOrder(t *testing.T) {
	s := New(golog.NewTestLogger(t))
	r := &fakeRobot{vel: core.Velocities{Linear: 1}}

	first := newStop(t)
	s.Submit(first)
	s.Tick(r, dt)

	a := newStop(t, command.WithPriority(5))
	b := newStop(t, command.WithPriority(5))
	low := newStop(t, command.WithPriority(1))
	high := newStop(t, command.WithPriority(9))
	c := newStop(t, command.WithPriority(5))
	for _, cmd := range []command.Command{a, b, low, high, c} {
		require.Equal(t, Queued, s.Submit(cmd))
	}

	r.vel.Linear = 0
	var order []command.Command
	for i := 0; i < 10; i++ {
		ran, done := s.Tick(r, dt)
		if ran == nil {
			break
		}
		require.True(t, done)
		order = append(order, ran)
	}

	want := []command.Command{first, high, a, b, c, low}
	require.Len(t, order, len(want))
	for i := range want {
		assert.Same(t, want[i], order[i], "position %d", i)
	}
}

func TestCompletionPromotesForNextTick(t *testing.T) {
	s := New(golog.NewTestLogger(t))
	r := &fakeRobot{}

	stop := newStop(t)
	s.Submit(stop)
	move := newCruise(t)
	s.Submit(move)

	c, done := s.Tick(r, dt)
	assert.Same(t, stop, c)
	assert.True(t, done)
	assert.Same(t, move, s.Active(), "next command promoted")
	assert.Equal(t, core.Forces{}, r.forces, "move does not run until the next tick")

	c, _ = s.Tick(r, dt)
	assert.Same(t, move, c)
	assert.Greater(t, r.forces.Linear, 0.0)
}

func TestClear(t *testing.T) {
	s := New(golog.NewTestLogger(t))
	s.Submit(newCruise(t))
	s.Submit(newCruise(t))

	assert.Equal(t, 2, s.Clear())
	assert.Nil(t, s.Active())
	assert.Empty(t, s.Pending())
	assert.Equal(t, 0, s.Len())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "preempted", Preempted.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
