package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("Vec3{}.Normalize() = %v, want zero vector", zero)
	}
}

func TestVec3DistanceSquared(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 3}
	got := a.DistanceSquared(b)
	want := float32(25) // 3*3 + 4*4
	if got != want {
		t.Errorf("Vec3.DistanceSquared() = %v, want %v", got, want)
	}
	if got != b.DistanceSquared(a) {
		t.Error("Vec3.DistanceSquared() should be symmetric")
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, -4, 2}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(t=0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(t=1) = %v, want %v", got, b)
	}
	got := a.Lerp(b, 0.5)
	want := Vec3{5, -2, 1}
	if got != want {
		t.Errorf("Lerp(t=0.5) = %v, want %v", got, want)
	}
}

func TestVec3RotateBy(t *testing.T) {
	// 90 degrees around Y maps +X to -Z.
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math32.Pi/2)
	got := Vec3{1, 0, 0}.RotateBy(q)
	want := Vec3{0, 0, -1}

	if math32.Abs(got.X-want.X) > 1e-5 ||
		math32.Abs(got.Y-want.Y) > 1e-5 ||
		math32.Abs(got.Z-want.Z) > 1e-5 {
		t.Errorf("RotateBy(90deg Y) = %v, want %v", got, want)
	}
}

func TestVec3RotateByIdentity(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := v.RotateBy(QuatIdentity())
	if got != v {
		t.Errorf("RotateBy(identity) = %v, want %v", got, v)
	}
}
