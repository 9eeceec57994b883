// Package camera provides a free-flying first-person camera.
package camera

import (
	gomath "math"

	"github.com/alwayssomewhattired/Vulkan/pkg/math"
)

// Movement is a keyboard movement direction.
type Movement int

// Movement directions relative to the camera.
const (
	Forward Movement = iota
	Backward
	Left
	Right
)

const maxPitch = 89.0

var worldUp = math.Vec3{X: 0, Y: 1, Z: 0}

// FlyCamera moves freely through the scene. Yaw and Pitch are in degrees.
type FlyCamera struct {
	Position math.Vec3
	Yaw      float32
	Pitch    float32

	MovementSpeed    float32 // units per second
	MouseSensitivity float32 // degrees per pixel
}

// Uniforms is the per-frame camera block handed to shaders.
type Uniforms struct {
	View math.Mat4
	Proj math.Mat4
}

// NewFlyCamera creates a camera at eye height a few units back from the
// origin, looking down -Z.
func NewFlyCamera() *FlyCamera {
	return &FlyCamera{
		Position:         math.Vec3{X: 0, Y: 1.6, Z: 5},
		Yaw:              -90,
		Pitch:            0,
		MovementSpeed:    6,
		MouseSensitivity: 0.1,
	}
}

// Front returns the normalized view direction.
func (c *FlyCamera) Front() math.Vec3 {
	yaw := float64(math.Radians(c.Yaw))
	pitch := float64(math.Radians(c.Pitch))

	front := math.Vec3{
		X: float32(gomath.Cos(pitch) * gomath.Cos(yaw)),
		Y: float32(gomath.Sin(pitch)),
		Z: float32(gomath.Cos(pitch) * gomath.Sin(yaw)),
	}
	return front.Normalize()
}

// Right returns the normalized right vector.
func (c *FlyCamera) Right() math.Vec3 {
	return c.Front().Cross(worldUp).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Front()), worldUp)
}

// ProcessKeyboard moves the camera dt seconds in dir.
func (c *FlyCamera) ProcessKeyboard(dir Movement, dt float32) {
	velocity := c.MovementSpeed * dt

	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front().Scale(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front().Scale(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right().Scale(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right().Scale(velocity))
	}
}

// ProcessMouseMovement turns the camera by a mouse delta in pixels.
// With constrainPitch set, pitch stays within ±89° so the view never flips.
func (c *FlyCamera) ProcessMouseMovement(dx, dy float32, constrainPitch bool) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch += dy * c.MouseSensitivity

	if constrainPitch {
		c.Pitch = math.Clamp(c.Pitch, -maxPitch, maxPitch)
	}
}

// Uniforms returns the view and projection matrices. fovY is in degrees.
func (c *FlyCamera) Uniforms(aspect, fovY, near, far float32) Uniforms {
	return Uniforms{
		View: c.ViewMatrix(),
		Proj: math.Perspective(math.Radians(fovY), aspect, near, far),
	}
}

// FitToBounds moves the camera onto the +Z side of the box and points it
// at the box center so the whole box is in view.
func (c *FlyCamera) FitToBounds(boundsMin, boundsMax [3]float32) {
	lo, hi := math.V3(boundsMin), math.V3(boundsMax)
	center := lo.Add(hi).Scale(0.5)

	// Half diagonal, padded so the box fits a 45° frustum.
	distance := hi.Sub(lo).Length() * 1.25
	if distance < 1 {
		distance = 1
	}

	c.Position = math.Vec3{X: center.X, Y: center.Y, Z: center.Z + distance}
	c.Yaw = -90
	c.Pitch = 0
}
