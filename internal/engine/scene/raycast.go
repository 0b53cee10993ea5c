package scene

import (
	"github.com/Faultbox/spatial-viewer/internal/engine/picking"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// RayHit is the nearest intersection found by RaycastSingle.
type RayHit struct {
	Position math.Vec3
	Normal   math.Vec3 // world space, facing the ray origin
	Distance float32
	Node     Handle
	Name     string
}

// RaycastSingle returns the nearest triangle hit within maxDistance among
// visible drawables whose view mask shares a bit with viewMask.
//
// Each drawable is first tested against its mesh bounding box, the same
// volume the renderer culls with, so geometry outside a fixed box is not
// pickable.
func (s *Scene) RaycastSingle(ray picking.Ray, maxDistance float32, viewMask uint32) (*RayHit, bool) {
	var best *RayHit
	bestT := maxDistance

	s.Walk(func(h Handle, n *Node, world math.Mat4) {
		d := n.Drawable
		if d == nil || !d.Visible || d.Mesh == nil || d.ViewMask&viewMask == 0 {
			return
		}

		inv := world.Inverse()
		local := ray.Transform(inv)

		b := d.Mesh.Bounds
		if _, ok := local.IntersectAABB(picking.AABB{Min: b.Min, Max: b.Max}); !ok {
			return
		}

		m := d.Mesh
		for i := 0; i < m.TriangleCount(); i++ {
			a, bb, c := m.Triangle(i)
			t, normal, ok := local.IntersectTriangle(a, bb, c)
			if !ok || t > bestT {
				continue
			}

			worldNormal := normalToWorld(inv, normal)
			if worldNormal.Dot(ray.Direction) > 0 {
				worldNormal = worldNormal.Neg()
			}

			bestT = t
			best = &RayHit{
				Position: ray.At(t),
				Normal:   worldNormal,
				Distance: t,
				Node:     h,
				Name:     n.Name,
			}
		}
	})

	return best, best != nil
}

// normalToWorld transforms a mesh-space normal by the inverse transpose of
// the world matrix, given its inverse.
func normalToWorld(inv math.Mat4, n math.Vec3) math.Vec3 {
	return math.Vec3{
		X: inv[0]*n.X + inv[1]*n.Y + inv[2]*n.Z,
		Y: inv[4]*n.X + inv[5]*n.Y + inv[6]*n.Z,
		Z: inv[8]*n.X + inv[9]*n.Y + inv[10]*n.Z,
	}.Normalize()
}
