package core

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Obstacle is an immutable axis-aligned rectangle.
type Obstacle struct {
	x, y          float64
	width, height float64
}

// NewObstacle creates an obstacle centred at (x, y).
func NewObstacle(x, y, width, height float64) Obstacle {
	return Obstacle{x: x, y: y, width: width, height: height}
}

// Position returns the obstacle centre.
func (o Obstacle) Position() (float64, float64) { return o.x, o.y }

// Dimensions returns the full width (X extent) and height (Y extent).
func (o Obstacle) Dimensions() (float64, float64) { return o.width, o.height }

// Rect returns the obstacle footprint.
func (o Obstacle) Rect() r2.Rect {
	return r2.RectFromCenterSize(r2.Point{X: o.x, Y: o.y}, r2.Point{X: o.width, Y: o.height})
}

// Contains reports whether the point lies inside or on the obstacle boundary.
func (o Obstacle) Contains(x, y float64) bool {
	return o.Rect().ContainsPoint(r2.Point{X: x, Y: y})
}

func (o Obstacle) String() string {
	return fmt.Sprintf("obstacle@(%.2f, %.2f) %.2fx%.2f", o.x, o.y, o.width, o.height)
}

// Workspace is the static world the robot moves in.
type Workspace struct {
	obstacles []Obstacle
}

// NewWorkspace creates a workspace containing the given obstacles.
func NewWorkspace(obstacles ...Obstacle) *Workspace {
	w := &Workspace{}
	for _, o := range obstacles {
		w.AddObstacle(o)
	}
	return w
}

// AddObstacle appends an obstacle.
func (w *Workspace) AddObstacle(o Obstacle) {
	w.obstacles = append(w.obstacles, o)
}

// Obstacles returns a copy of the obstacle list.
func (w *Workspace) Obstacles() []Obstacle {
	out := make([]Obstacle, len(w.obstacles))
	copy(out, w.obstacles)
	return out
}

// NumObstacles returns the obstacle count.
func (w *Workspace) NumObstacles() int {
	return len(w.obstacles)
}

// Bounds returns the smallest rectangle enclosing every obstacle and the origin.
func (w *Workspace) Bounds() r2.Rect {
	b := r2.RectFromPoints(r2.Point{})
	for _, o := range w.obstacles {
		b = b.Union(o.Rect())
	}
	return b
}

// At returns the first obstacle containing the point, if any.
func (w *Workspace) At(x, y float64) (Obstacle, bool) {
	for _, o := range w.obstacles {
		if o.Contains(x, y) {
			return o, true
		}
	}
	return Obstacle{}, false
}
