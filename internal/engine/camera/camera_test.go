package camera

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/driftmark/vanim/pkg/math"
)

func vec3Near(a, b math.Vec3, eps float32) bool {
	return math32.Abs(a.X-b.X) < eps && math32.Abs(a.Y-b.Y) < eps && math32.Abs(a.Z-b.Z) < eps
}

func TestOrbitPosition(t *testing.T) {
	c := &OrbitCamera{Distance: 100}

	// Yaw 0, pitch 0: straight out along +Z.
	if got, want := c.Position(), (math.Vec3{Z: 100}); !vec3Near(got, want, 1e-4) {
		t.Errorf("Position() = %+v, want %+v", got, want)
	}

	c.Yaw = math32.Pi / 2
	if got, want := c.Position(), (math.Vec3{X: 100}); !vec3Near(got, want, 1e-4) {
		t.Errorf("Position() after quarter turn = %+v, want %+v", got, want)
	}

	// Pitch raises the camera without changing distance to center.
	c.Pitch = 0.5
	pos := c.Position()
	if pos.Y <= 0 {
		t.Errorf("Position().Y = %v, want > 0 with positive pitch", pos.Y)
	}
	if d := pos.Length(); math32.Abs(d-100) > 1e-3 {
		t.Errorf("distance to center = %v, want 100", d)
	}
}

func TestOrbitPositionOffCenter(t *testing.T) {
	c := &OrbitCamera{
		Center:   math.Vec3{X: 10, Y: 20, Z: 30},
		Distance: 50,
	}
	want := math.Vec3{X: 10, Y: 20, Z: 80}
	if got := c.Position(); !vec3Near(got, want, 1e-4) {
		t.Errorf("Position() = %+v, want %+v", got, want)
	}
}

func TestRotateAccumulates(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(0.3)
	c.Rotate(0.2)
	if math32.Abs(c.Yaw-0.5) > 1e-6 {
		t.Errorf("Yaw = %v, want 0.5", c.Yaw)
	}
}

func TestDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 10000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v after large upward drag, want MaxPitch %v", c.Pitch, c.MaxPitch)
	}

	c.HandleDrag(0, -20000)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v after large downward drag, want MinPitch %v", c.Pitch, c.MinPitch)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()

	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v after zooming in, want MinDistance %v", c.Distance, c.MinDistance)
	}

	for i := 0; i < 100; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("Distance = %v after zooming out, want MaxDistance %v", c.Distance, c.MaxDistance)
	}
}
