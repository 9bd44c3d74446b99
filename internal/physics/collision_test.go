package physics

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/diffdrive-sim/internal/core"
)

func TestNewHitbox(t *testing.T) {
	h := NewHitbox(core.Pose{X: 1, Y: 2, Theta: math.Pi / 2}, 0.2, 0.4)

	// Length runs along the heading, here world +Y.
	want := Hitbox{{X: 1.1, Y: 1.8}, {X: 1.1, Y: 2.2}, {X: 0.9, Y: 2.2}, {X: 0.9, Y: 1.8}}
	for i := range want {
		assert.InDelta(t, want[i].X, h[i].X, 1e-12, "corner %d x", i)
		assert.InDelta(t, want[i].Y, h[i].Y, 1e-12, "corner %d y", i)
	}
}

func TestHitboxOverlaps(t *testing.T) {
	diamond := NewHitbox(core.Pose{Theta: math.Pi / 4}, 1, 1)
	square := NewHitbox(core.Pose{}, 1, 1)

	tests := []struct {
		name string
		box  Hitbox
		rect r2.Rect
		want bool
	}{
		{"aligned overlap", square, rectFromLoHi(0.4, -0.2, 1, 0.2), true},
		{"aligned touching", square, rectFromLoHi(0.5, -0.2, 1, 0.2), true},
		{"separated on world x", square, rectFromLoHi(0.6, -0.2, 1, 0.2), false},
		{"separated on world y", square, rectFromLoHi(-0.2, 0.6, 0.2, 1), false},
		{"rotated overlap", diamond, rectFromLoHi(0.3, 0.3, 1.3, 1.3), true},
		{"separated on robot edge axis", diamond, rectFromLoHi(0.45, 0.45, 1.45, 1.45), false},
		{"rotated separated on world x", diamond, rectFromLoHi(0.8, -0.1, 1.2, 0.1), false},
		{"obstacle inside hitbox", square, rectFromLoHi(-0.1, -0.1, 0.1, 0.1), true},
	}

	for _, tt := range tests {
		if got := tt.box.Overlaps(tt.rect); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDegenerateAxisIsNonSeparating(t *testing.T) {
	// Zero width collapses one hitbox edge to a point.
	segment := NewHitbox(core.Pose{}, 0, 1)

	if !segment.Overlaps(rectFromLoHi(-0.1, -0.1, 0.1, 0.1)) {
		t.Error("segment crossing the obstacle should collide")
	}
	if segment.Overlaps(rectFromLoHi(-0.1, 0.5, 0.1, 0.7)) {
		t.Error("segment below the obstacle should not collide")
	}

	point := NewHitbox(core.Pose{X: 2, Y: 2}, 0, 0)
	if !point.Overlaps(rectFromLoHi(1, 1, 3, 3)) {
		t.Error("point inside the obstacle should collide")
	}
}

func TestFindCollision(t *testing.T) {
	obstacles := []core.Obstacle{
		core.NewObstacle(2, 2, 1, 1),
		core.NewObstacle(0, 0, 1, 1),
		core.NewObstacle(0.2, 0, 1, 1),
	}
	h := NewHitbox(core.Pose{}, 0.1, 0.1)

	o, ok := FindCollision(h, obstacles)
	if !ok {
		t.Fatal("expected a collision")
	}
	if o != obstacles[1] {
		t.Errorf("first match should win, got %v", o)
	}
	if !Collides(h, obstacles) {
		t.Error("Collides should agree with FindCollision")
	}
	if Collides(h, obstacles[:1]) {
		t.Error("far obstacle should not collide")
	}
	if Collides(h, nil) {
		t.Error("empty obstacle list never collides")
	}
}

func rectFromLoHi(x0, y0, x1, y1 float64) r2.Rect {
	return r2.RectFromPoints(r2.Point{X: x0, Y: y0}, r2.Point{X: x1, Y: y1})
}
