// Package lighting describes the viewer's light rig: flat ambient plus one
// directional light that can track the camera.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Rig is the scene lighting.
type Rig struct {
	Ambient      math.Vec3 // RGB
	Direction    math.Vec3 // unit, pointing away from the light
	Brightness   float32
	FollowCamera bool // aim the light along the view direction every frame
}

// DirectionFromAngles returns the direction of light coming from a source
// at the given yaw around Y and elevation above the horizon, in degrees.
func DirectionFromAngles(yaw, elevation float32) math.Vec3 {
	y := float64(math.Radians(yaw))
	e := float64(math.Radians(elevation))

	toLight := math.Vec3{
		X: float32(gomath.Cos(e) * gomath.Sin(y)),
		Y: float32(gomath.Sin(e)),
		Z: float32(gomath.Cos(e) * gomath.Cos(y)),
	}
	return toLight.Neg()
}

// Update re-aims a camera-following light along forward.
func (r *Rig) Update(forward math.Vec3) {
	if r.FollowCamera {
		r.Direction = forward.Normalize()
	}
}

// diffuse returns the light factor for a surface normal. Surfaces are lit
// from both sides. The surface shader applies the same formula.
func (r Rig) diffuse(normal math.Vec3) float32 {
	d := math.Abs(normal.Normalize().Dot(r.Direction.Neg()))
	return d * r.Brightness
}
