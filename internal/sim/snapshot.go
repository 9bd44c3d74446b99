package sim

import (
	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// CommandInfo describes a scheduled command for observers.
type CommandInfo struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Priority    int        `json:"priority"`
	Description string     `json:"description"`
	Target      *core.Pose `json:"target,omitempty"`
}

// Snapshot is a consistent copy of the simulation state at one tick.
type Snapshot struct {
	Time         float64          `json:"time"`
	Pose         core.Pose        `json:"pose"`
	Body         core.Dimensions  `json:"body"`
	Hitbox       [4][2]float64    `json:"hitbox"`
	Velocities   core.Velocities  `json:"velocities"`
	Wheels       core.WheelSpeeds `json:"wheels"`
	TargetWheels core.WheelSpeeds `json:"target_wheels"`
	Forces       core.Forces      `json:"forces"`
	Collided     bool             `json:"collided"`
	CollidedWith *ObstacleSpec    `json:"collided_with,omitempty"`
	Active       *CommandInfo     `json:"active,omitempty"`
	Pending      []CommandInfo    `json:"pending,omitempty"`
}

// Snapshot captures the current state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Time:         s.currentTime,
		Pose:         s.body.Position(),
		Body:         s.body.Dimensions(),
		Velocities:   s.body.ChassisVelocities(),
		Wheels:       s.body.WheelSpeeds(),
		TargetWheels: s.body.TargetWheelSpeeds(),
		Forces:       s.body.ChassisForces(),
		Collided:     s.body.Collided(),
	}
	for i, p := range s.body.Hitbox() {
		snap.Hitbox[i] = [2]float64{p.X, p.Y}
	}
	if o, ok := s.body.CollidedWith(); ok {
		spec := SpecOf(o)
		snap.CollidedWith = &spec
	}
	if c := s.sched.Active(); c != nil {
		info := s.describe(c)
		snap.Active = &info
	}
	for _, c := range s.sched.Pending() {
		snap.Pending = append(snap.Pending, s.describe(c))
	}
	return snap
}

func (s *Simulator) describe(c command.Command) CommandInfo {
	info := CommandInfo{
		ID:          c.ID().String(),
		Kind:        c.Kind().String(),
		Priority:    c.Priority(),
		Description: c.Describe(),
	}
	if p, ok := c.TargetPose(s.body); ok {
		info.Target = &p
	}
	return info
}
