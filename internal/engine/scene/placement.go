package scene

import (
	"fmt"

	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// PlaceSurface creates a node under parent that shows m at the surface's
// bounds center and orientation. The orientation is used as given, with no
// normalization and no scale. Each placement only touches its own node, so
// surfaces can be placed in any order.
func PlaceSurface(s *Scene, parent Handle, name string, m *mesh.Mesh, center math.Vec3, orientation math.Quat) (Handle, error) {
	h, err := s.CreateChild(parent, name)
	if err != nil {
		return Handle{}, fmt.Errorf("placing surface %q: %w", name, err)
	}

	n := s.Get(h)
	n.Position = center
	n.Rotation = orientation
	n.Drawable = &Drawable{
		Mesh:     m,
		ViewMask: DefaultViewMask,
		Visible:  true,
		Material: Material{Color: mesh.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}, DoubleSide: true},
	}
	return h, nil
}
