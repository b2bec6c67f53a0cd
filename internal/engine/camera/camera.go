// Package camera provides the orbit camera used by the demo scene.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/driftmark/vanim/pkg/math"
)

// OrbitCamera orbits a center point at a fixed distance.
type OrbitCamera struct {
	Center math.Vec3

	Distance float32
	Pitch    float32 // vertical angle, radians
	Yaw      float32 // horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera returns a camera with the demo's default framing:
// 200 units out, slightly above the scene.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.25,
		Yaw:             0.0,
		MinDistance:     50.0,
		MaxDistance:     1000.0,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := math32.Cos(c.Pitch)
	return math.Vec3{
		X: c.Center.X + c.Distance*cosPitch*math32.Sin(c.Yaw),
		Y: c.Center.Y + c.Distance*math32.Sin(c.Pitch),
		Z: c.Center.Z + c.Distance*cosPitch*math32.Cos(c.Yaw),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Center, up)
}

// Rotate spins the camera around the center. Used for keyboard orbit.
func (c *OrbitCamera) Rotate(deltaYaw float32) {
	c.Yaw += deltaYaw
}

// HandleDrag updates yaw and pitch from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
