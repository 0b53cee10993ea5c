// Package camera provides the viewer's first-person free camera.
package camera

import (
	gomath "math"

	"github.com/Faultbox/spatial-viewer/internal/engine/input"
	"github.com/Faultbox/spatial-viewer/internal/engine/picking"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Pitch limits in degrees.
const (
	MinPitch = -90
	MaxPitch = 90
)

// FreeCamera is a mouse-look camera that flies in its local frame.
// Angles are in degrees; positive pitch looks down.
type FreeCamera struct {
	Position math.Vec3
	Yaw      float32
	Pitch    float32

	// Control
	Sensitivity float32 // degrees per pixel of mouse motion
	MoveSpeed   float32 // world units per second

	// Projection
	Fov    float32 // vertical field of view, degrees
	Near   float32
	Far    float32
	Aspect float32
}

// New creates a camera at the origin looking along +Z.
func New() *FreeCamera {
	return &FreeCamera{
		Sensitivity: 0.1,
		MoveSpeed:   2.0,
		Fov:         45,
		Near:        0.1,
		Far:         1000,
		Aspect:      16.0 / 9.0,
	}
}

// Update applies one frame of input. The frame is ignored while focus is
// captured elsewhere.
func (c *FreeCamera) Update(in input.Source, dt float32) {
	if in.FocusCaptured() {
		return
	}

	dx, dy := in.MouseMove()
	c.Yaw += c.Sensitivity * dx
	c.Pitch = math.Clamp(c.Pitch+c.Sensitivity*dy, MinPitch, MaxPitch)

	step := c.MoveSpeed * dt
	var local math.Vec3
	if in.KeyDown(input.KeyW) {
		local.Z += step
	}
	if in.KeyDown(input.KeyS) {
		local.Z -= step
	}
	if in.KeyDown(input.KeyA) {
		local.X -= step
	}
	if in.KeyDown(input.KeyD) {
		local.X += step
	}
	if local != (math.Vec3{}) {
		c.Position = c.Position.Add(c.Rotation().Rotate(local))
	}
}

// WorldPosition returns the eye position.
func (c *FreeCamera) WorldPosition() math.Vec3 {
	return c.Position
}

// Rotation returns yaw about world Y followed by pitch about local X.
func (c *FreeCamera) Rotation() math.Quat {
	return math.QuatFromEuler(c.Pitch, c.Yaw, 0)
}

// Forward returns the unit view direction.
func (c *FreeCamera) Forward() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3Forward)
}

// Right returns the unit right axis.
func (c *FreeCamera) Right() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3Right)
}

// Up returns the unit up axis.
func (c *FreeCamera) Up() math.Vec3 {
	return c.Rotation().Rotate(math.Vec3Up)
}

// ViewMatrix returns the view matrix for the renderer.
func (c *FreeCamera) ViewMatrix() math.Mat4 {
	rot := c.Rotation()
	return math.ViewFromBasis(c.Position, rot.Rotate(math.Vec3Right), rot.Rotate(math.Vec3Up), rot.Rotate(math.Vec3Forward))
}

// ProjectionMatrix returns the perspective projection.
func (c *FreeCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(math.Radians(c.Fov), c.Aspect, c.Near, c.Far)
}

// SetViewport updates the aspect ratio from a viewport size.
func (c *FreeCamera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// ScreenRay returns the ray through normalized viewport coordinates, with
// (0, 0) the top-left and (1, 1) the bottom-right corner. The ray starts on
// the near plane.
func (c *FreeCamera) ScreenRay(x, y float32) picking.Ray {
	tanHalf := float32(gomath.Tan(float64(math.Radians(c.Fov)) / 2))
	local := math.Vec3{
		X: (2*x - 1) * tanHalf * c.Aspect,
		Y: (1 - 2*y) * tanHalf,
		Z: 1,
	}
	rot := c.Rotation()
	nearPoint := rot.Rotate(local.Scale(c.Near))
	return picking.NewRay(c.Position.Add(nearPoint), rot.Rotate(local))
}
