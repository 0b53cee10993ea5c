// Package debug provides debug visualization geometry.
package debug

import (
	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// boxEdges lists corner index pairs. Corner i has bit 0 for X, bit 1 for Y
// and bit 2 for Z set to max.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// BoundsCorners returns the eight corners of b mapped through world.
func BoundsCorners(b mesh.Bounds, world math.Mat4) [8]math.Vec3 {
	var corners [8]math.Vec3
	for i := range corners {
		p := math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]}
		if i&1 != 0 {
			p.X = b.Max[0]
		}
		if i&2 != 0 {
			p.Y = b.Max[1]
		}
		if i&4 != 0 {
			p.Z = b.Max[2]
		}
		corners[i] = world.TransformPoint(p)
	}
	return corners
}

// GenerateBoundsWireframe creates line vertices for the box b placed by
// world, as [x, y, z] per vertex. The box follows the node's rotation, so
// it shows exactly the volume the probe tests against.
func GenerateBoundsWireframe(b mesh.Bounds, world math.Mat4) []float32 {
	corners := BoundsCorners(b, world)
	out := make([]float32, 0, BBoxWireframeVertexCount*3)
	for _, e := range boxEdges {
		for _, c := range e {
			out = append(out, corners[c].X, corners[c].Y, corners[c].Z)
		}
	}
	return out
}
