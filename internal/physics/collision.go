package physics

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

// Hitbox is an oriented rectangle given by its four corners in
// counter-clockwise order.
type Hitbox [4]r2.Point

// NewHitbox builds the oriented footprint of a body centred at pose with the
// given length (along heading) and width (across heading).
func NewHitbox(pose core.Pose, width, length float64) Hitbox {
	hl, hw := length/2, width/2
	c, s := math.Cos(pose.Theta), math.Sin(pose.Theta)
	local := [4]r2.Point{{X: -hl, Y: -hw}, {X: hl, Y: -hw}, {X: hl, Y: hw}, {X: -hl, Y: hw}}

	var h Hitbox
	for i, p := range local {
		h[i] = r2.Point{
			X: pose.X + p.X*c - p.Y*s,
			Y: pose.Y + p.X*s + p.Y*c,
		}
	}
	return h
}

// axes returns the candidate separating axes: both hitbox edge directions
// followed by the world X and Y axes.
func (h Hitbox) axes() [4]r2.Point {
	return [4]r2.Point{
		h[1].Sub(h[0]),
		h[3].Sub(h[0]),
		{X: 1, Y: 0},
		{X: 0, Y: 1},
	}
}

// project returns the extent of corners along axis. The second result is
// false when the axis is degenerate.
func project(corners []r2.Point, axis r2.Point) (r1.Interval, bool) {
	if axis.Norm() == 0 {
		return r1.EmptyInterval(), false
	}
	n := axis.Normalize()
	iv := r1.EmptyInterval()
	for _, c := range corners {
		iv = iv.AddPoint(c.Dot(n))
	}
	return iv, true
}

// Overlaps reports whether the hitbox and the axis-aligned rectangle overlap
// on every candidate axis. Touching boundaries count as overlap.
func (h Hitbox) Overlaps(rect r2.Rect) bool {
	verts := rect.Vertices()
	for _, axis := range h.axes() {
		a, ok := project(h[:], axis)
		if !ok {
			continue
		}
		b, _ := project(verts[:], axis)
		if !a.Intersects(b) {
			return false
		}
	}
	return true
}

// FindCollision returns the first obstacle the hitbox overlaps.
func FindCollision(h Hitbox, obstacles []core.Obstacle) (core.Obstacle, bool) {
	for _, o := range obstacles {
		if h.Overlaps(o.Rect()) {
			return o, true
		}
	}
	return core.Obstacle{}, false
}

// Collides reports whether the hitbox overlaps any obstacle.
func Collides(h Hitbox, obstacles []core.Obstacle) bool {
	_, hit := FindCollision(h, obstacles)
	return hit
}
