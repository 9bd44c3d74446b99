package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/multierr"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// ObstacleSpec is the serialized form of an obstacle.
type ObstacleSpec struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Obstacle converts the spec to a core obstacle.
func (o ObstacleSpec) Obstacle() core.Obstacle {
	return core.NewObstacle(o.X, o.Y, o.Width, o.Height)
}

// SpecOf converts a core obstacle to its serialized form.
func SpecOf(o core.Obstacle) ObstacleSpec {
	x, y := o.Position()
	w, h := o.Dimensions()
	return ObstacleSpec{X: x, Y: y, Width: w, Height: h}
}

// Scenario is the initial world: robot placement, body size and obstacles.
type Scenario struct {
	Name      string          `json:"name"`
	Start     core.Pose       `json:"start"`
	Body      core.Dimensions `json:"body"`
	Obstacles []ObstacleSpec  `json:"obstacles"`
}

// DefaultScenario returns the demo arena.
func DefaultScenario() Scenario {
	return Scenario{
		Name:  "default",
		Start: core.Pose{X: 0, Y: 0, Theta: math.Pi / 2},
		Body:  core.Dimensions{Width: 0.5, Length: 0.5},
		Obstacles: []ObstacleSpec{
			{X: 2, Y: 2, Width: 1, Height: 1},
			{X: -3, Y: 1, Width: 0.5, Height: 2},
			{X: 0, Y: -2.5, Width: 3, Height: 0.5},
			{X: 2.5, Y: -1, Width: 1, Height: 3},
		},
	}
}

// Validate reports every invalid field.
func (s Scenario) Validate() error {
	var err error
	if s.Body.Width <= 0 || s.Body.Length <= 0 {
		err = multierr.Append(err, fmt.Errorf("body dimensions must be positive, got %.3fx%.3f", s.Body.Width, s.Body.Length))
	}
	for i, o := range s.Obstacles {
		if o.Width < 0 || o.Height < 0 {
			err = multierr.Append(err, fmt.Errorf("obstacle %d: negative size %.3fx%.3f", i, o.Width, o.Height))
		}
	}
	return err
}

// Workspace builds the obstacle workspace.
func (s Scenario) Workspace() *core.Workspace {
	w := core.NewWorkspace()
	for _, o := range s.Obstacles {
		w.AddObstacle(o.Obstacle())
	}
	return w
}

// LoadScenario reads a JSON scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// SaveScenario writes s as indented JSON.
func SaveScenario(path string, s Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
