package command

import (
	"errors"
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
	"github.com/elektrokombinacija/diffdrive-sim/internal/physics"
)

const dt = 0.01

type fakeRobot struct {
	pose   core.Pose
	vel    core.Velocities
	forces core.Forces
	calls  int
}

func (f *fakeRobot) SetChassisForces(force, torque float64) {
	f.forces = core.Forces{Linear: force, Angular: torque}
	f.calls++
}
func (f *fakeRobot) Position() core.Pose                { return f.pose }
func (f *fakeRobot) ChassisVelocities() core.Velocities { return f.vel }
func (f *fakeRobot) Dimensions() core.Dimensions {
	return core.Dimensions{Width: 0.5, Length: 0.5}
}

func newBody(t *testing.T, pose core.Pose) *physics.RigidBody {
	t.Helper()
	b, err := physics.NewRigidBody(pose, core.Dimensions{Width: 0.5, Length: 0.5},
		physics.DefaultParams(), golog.NewTestLogger(t))
	require.NoError(t, err)
	return b
}

// run executes c against b until completion or the time limit, returning
// the simulated seconds taken.
func run(c Command, b *physics.RigidBody, limit float64) (float64, bool) {
	for elapsed := 0.0; elapsed < limit; elapsed += dt {
		if c.Execute(b, dt) {
			return elapsed, true
		}
		b.Update(dt)
	}
	return limit, false
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindMove, "move"},
		{KindTurn, "turn"},
		{KindStop, "stop"},
		{Kind(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	_, err := NewMove(1, 0, DefaultMoveGains())
	assert.True(t, errors.Is(err, ErrZeroSpeedDistance), "got %v", err)

	_, err = NewTurn(1, 0, DefaultTurnGains())
	assert.True(t, errors.Is(err, ErrZeroSpeedAngle), "got %v", err)

	_, err = NewMove(math.NaN(), 1, DefaultMoveGains())
	assert.True(t, errors.Is(err, ErrInvalidParam), "got %v", err)

	_, err = NewStop(-1, DefaultStopGains())
	assert.True(t, errors.Is(err, ErrInvalidParam), "got %v", err)

	_, err = NewMoveContinuous(0, DefaultMoveGains())
	assert.NoError(t, err)
}

func TestDefaultPriorities(t *testing.T) {
	m, _ := NewMoveContinuous(1, DefaultMoveGains())
	tr, _ := NewTurnContinuous(1, DefaultTurnGains())
	s, _ := NewStop(0, DefaultStopGains())
	assert.Equal(t, PriorityDrive, m.Priority())
	assert.Equal(t, PriorityDrive, tr.Priority())
	assert.Equal(t, PriorityStop, s.Priority())

	custom, _ := NewStop(0, DefaultStopGains(), WithPriority(3))
	assert.Equal(t, 3, custom.Priority())
	assert.NotEqual(t, m.ID(), tr.ID())
}

func TestMoveDistance(t *testing.T) {
	tests := []struct {
		name            string
		distance, speed float64
		wantX           float64
	}{
		{"forward", 1, 0.5, 1},
		{"negative distance", -0.5, 0.5, -0.5},
		{"negative speed", 0.5, -0.5, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBody(t, core.Pose{})
			m, err := NewMove(tt.distance, tt.speed, DefaultMoveGains())
			require.NoError(t, err)

			_, done := run(m, b, 30)
			require.True(t, done, "move did not complete")
			assert.True(t, m.Completed())
			assert.InDelta(t, tt.wantX, b.Position().X, 0.02)
			assert.Less(t, math.Abs(b.ChassisVelocities().Linear), 0.01)
			assert.Equal(t, core.Forces{}, b.ChassisForces())

			// Completed commands are inert.
			assert.True(t, m.Execute(b, dt))
		})
	}
}

func TestMoveDoesNotCompleteWhileMoving(t *testing.T) {
	r := &fakeRobot{vel: core.Velocities{Linear: 0.5}}
	m, _ := NewMove(0, 1, DefaultMoveGains())

	assert.False(t, m.Execute(r, dt), "at target but still moving")
	assert.Less(t, r.forces.Linear, 0.0, "should brake")

	r.vel.Linear = 0
	assert.True(t, m.Execute(r, dt))
}

func TestMoveIntegralResetNearTarget(t *testing.T) {
	r := &fakeRobot{}
	m, _ := NewMove(1, 1, DefaultMoveGains())

	m.Execute(r, 1)
	assert.InDelta(t, 1.0, m.integral.sum, 1e-12)
	m.Execute(r, 1)
	m.Execute(r, 1)
	assert.InDelta(t, 2.0, m.integral.sum, 1e-12, "clamped")

	r.pose.X = 0.97
	m.Execute(r, 1)
	assert.Equal(t, 0.0, m.integral.sum)
}

func TestMoveContinuous(t *testing.T) {
	b := newBody(t, core.Pose{})
	m, err := NewMoveContinuous(-0.5, DefaultMoveGains())
	require.NoError(t, err)

	_, done := run(m, b, 30)
	assert.False(t, done)
	assert.False(t, m.Completed())
	assert.InDelta(t, -0.5, b.ChassisVelocities().Linear, 0.01)

	_, ok := m.TargetPose(b)
	assert.False(t, ok)
}

func TestMoveTargetPose(t *testing.T) {
	r := &fakeRobot{pose: core.Pose{X: 1, Y: 1, Theta: math.Pi / 2}}
	m, _ := NewMove(-2, 0.5, DefaultMoveGains())

	p, ok := m.TargetPose(r)
	require.True(t, ok)
	assert.InDelta(t, 1, p.X, 1e-9)
	assert.InDelta(t, -1, p.Y, 1e-9)

	m.Execute(r, dt)
	r.pose = core.Pose{X: 5, Y: 5, Theta: 0}
	p, _ = m.TargetPose(r)
	assert.InDelta(t, -1, p.Y, 1e-9, "anchored at the captured start")
}

func TestTurnAngle(t *testing.T) {
	start := math.Pi / 2
	tests := []struct {
		name         string
		angle, speed float64
		want         float64
	}{
		{"left quarter", math.Pi / 2, 0.8, math.Pi},
		{"right quarter", -math.Pi / 2, 0.8, 0},
		{"right via speed sign", math.Pi / 2, -0.8, 0},
		{"half turn", math.Pi, 0.8, 3 * math.Pi / 2},
		{"small", 0.1, 0.8, start + 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBody(t, core.Pose{X: 1, Y: 2, Theta: start})
			tr, err := NewTurn(tt.angle, tt.speed, DefaultTurnGains())
			require.NoError(t, err)

			_, done := run(tr, b, 20)
			require.True(t, done, "turn did not complete")
			assert.InDelta(t, 0, core.AngleDiff(tt.want, b.Position().Theta), 0.01)
			assert.Less(t, math.Abs(b.ChassisVelocities().Angular), 0.01)
			assert.InDelta(t, 1, b.Position().X, 1e-9)
			assert.InDelta(t, 2, b.Position().Y, 1e-9)
		})
	}
}

func TestTurnHeadingError(t *testing.T) {
	left, _ := NewTurn(math.Pi, 1, DefaultTurnGains())
	right, _ := NewTurn(-math.Pi, 1, DefaultTurnGains())
	left.target, right.target = 0.1, 0.1

	assert.InDelta(t, 0.2, left.headingError(core.TwoPi-0.1), 1e-9, "wraps across zero")
	assert.InDelta(t, -0.2, left.headingError(0.3), 1e-9)
	assert.InDelta(t, math.Pi, left.headingError(0.1+math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi, right.headingError(0.1+math.Pi), 1e-9)
}

func TestTurnContinuous(t *testing.T) {
	b := newBody(t, core.Pose{})
	tr, err := NewTurnContinuous(-0.8, DefaultTurnGains())
	require.NoError(t, err)

	_, done := run(tr, b, 30)
	assert.False(t, done)
	assert.InDelta(t, -0.8, b.ChassisVelocities().Angular, 0.01)
}

func TestTurnTargetPose(t *testing.T) {
	r := &fakeRobot{pose: core.Pose{X: 3, Y: 4, Theta: 0.2}}
	tr, _ := NewTurn(-0.5, 1, DefaultTurnGains())

	p, ok := tr.TargetPose(r)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.X)
	assert.InDelta(t, core.WrapAngle(-0.3), p.Theta, 1e-9)
}

func TestStopBrakesThenHolds(t *testing.T) {
	b := newBody(t, core.Pose{})
	b.SetChassisForces(15, 5)
	for i := 0; i < 100; i++ {
		b.Update(dt)
	}

	s, err := NewStop(0.5, DefaultStopGains())
	require.NoError(t, err)

	var braking, holding float64
	for i := 0; i < 1000 && !s.Completed(); i++ {
		switch s.Phase() {
		case PhaseBraking:
			braking += dt
		case PhaseHolding:
			holding += dt
		}
		s.Execute(b, dt)
		b.Update(dt)
	}

	require.True(t, s.Completed())
	assert.Equal(t, PhaseDone, s.Phase())
	assert.Greater(t, braking, 0.0)
	assert.InDelta(t, 0.5, holding, 0.03)
	v := b.ChassisVelocities()
	assert.Less(t, math.Abs(v.Linear), 0.01)
	assert.Less(t, math.Abs(v.Angular), 0.01)
}

func TestStopAtRestCompletesImmediately(t *testing.T) {
	r := &fakeRobot{}
	s, _ := NewStop(0, DefaultStopGains())

	assert.True(t, s.Execute(r, dt))
	assert.Equal(t, 1, r.calls)

	assert.True(t, s.Execute(r, dt))
	assert.Equal(t, 1, r.calls, "completed stop must not actuate")

	p, ok := s.TargetPose(r)
	assert.True(t, ok)
	assert.Equal(t, r.pose, p)
}

func TestStopBrakingLaw(t *testing.T) {
	r := &fakeRobot{vel: core.Velocities{Linear: 0.4, Angular: -0.2}}
	s, _ := NewStop(0, DefaultStopGains())

	assert.False(t, s.Execute(r, dt))
	assert.InDelta(t, -10, r.forces.Linear, 1e-12)
	assert.InDelta(t, 3, r.forces.Angular, 1e-12)
}

func TestDescribe(t *testing.T) {
	g := DefaultGains()
	mustMove := func(c *Move, err error) Command { require.NoError(t, err); return c }
	mustTurn := func(c *Turn, err error) Command { require.NoError(t, err); return c }
	mustStop := func(c *Stop, err error) Command { require.NoError(t, err); return c }

	tests := []struct {
		c    Command
		want string
	}{
		{mustMove(NewMove(1, 0.5, g.Move)), "move forward 1.0 m"},
		{mustMove(NewMove(-2, 0.5, g.Move)), "move backward 2.0 m"},
		{mustMove(NewMoveContinuous(-0.5, g.Move)), "continuous move backward at 0.5 m/s"},
		{mustTurn(NewTurn(math.Pi/2, 0.8, g.Turn)), "turn left 90.0° at 0.8 rad/s"},
		{mustTurn(NewTurnContinuous(-0.8, g.Turn)), "continuous turn right at 0.8 rad/s"},
		{mustStop(NewStop(2, g.Stop)), "stop and hold for 2 s"},
		{mustStop(NewStop(0, g.Stop)), "full stop"},
	}
	for _, tt := range tests {
		if got := tt.c.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
