// Package command implements the motion intents that own the robot's
// actuators for one scheduler tick at a time.
package command

import (
	"errors"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// Default priorities. Stop outranks drive commands so it preempts them.
const (
	PriorityDrive = 1
	PriorityStop  = 20
)

var (
	ErrZeroSpeedDistance = errors.New("move: fixed distance requires a non-zero speed")
	ErrZeroSpeedAngle    = errors.New("turn: fixed angle requires a non-zero angular speed")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidParam      = errors.New("invalid parameter")
)

// Kind identifies a command variant.
type Kind int

const (
	KindMove Kind = iota
	KindTurn
	KindStop
)

var kindNames = [...]string{"move", "turn", "stop"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Robot is the actuation and query surface a command drives.
type Robot interface {
	SetChassisForces(force, torque float64)
	Position() core.Pose
	ChassisVelocities() core.Velocities
	Dimensions() core.Dimensions
}

// Command is one of *Move, *Turn or *Stop.
type Command interface {
	ID() uuid.UUID
	Kind() Kind
	Priority() int
	// Execute runs one control step of dt seconds and reports completion.
	Execute(r Robot, dt float64) bool
	Completed() bool
	Describe() string
	// TargetPose is the pose the command is steering toward, if it has one.
	TargetPose(r Robot) (core.Pose, bool)

	sealed()
}

var (
	_ Command = (*Move)(nil)
	_ Command = (*Turn)(nil)
	_ Command = (*Stop)(nil)
)

// Option customizes a command at construction.
type Option func(*base)

// WithID sets the command id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(b *base) { b.id = id }
}

// WithPriority overrides the variant's default priority.
func WithPriority(p int) Option {
	return func(b *base) { b.priority = p }
}

type base struct {
	id        uuid.UUID
	priority  int
	completed bool
}

func newBase(priority int, opts []Option) base {
	b := base{id: uuid.New(), priority: priority}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) ID() uuid.UUID   { return b.id }
func (b *base) Priority() int   { return b.priority }
func (b *base) Completed() bool { return b.completed }
func (b *base) sealed()         {}

// Gains bundles the controller tuning for every command kind.
type Gains struct {
	Move MoveGains `json:"move"`
	Turn TurnGains `json:"turn"`
	Stop StopGains `json:"stop"`
}

// DefaultGains returns the reference tuning.
func DefaultGains() Gains {
	return Gains{
		Move: DefaultMoveGains(),
		Turn: DefaultTurnGains(),
		Stop: DefaultStopGains(),
	}
}
