package debug

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
)

// GenerateTorus builds a ring lying in the XZ plane around the local Y
// axis, used as the cursor marker. major is the ring radius and minor the
// tube radius.
func GenerateTorus(major, minor float32, rings, sides int) (*mesh.Mesh, error) {
	if rings < 3 || sides < 3 {
		return nil, fmt.Errorf("torus needs at least 3 rings and sides, got %d and %d", rings, sides)
	}
	if rings*sides > 65535 {
		return nil, fmt.Errorf("torus with %d vertices exceeds 16-bit indices", rings*sides)
	}

	vertices := make([]float32, 0, rings*sides*6)
	for r := 0; r < rings; r++ {
		u := 2 * gomath.Pi * float64(r) / float64(rings)
		cu, su := float32(gomath.Cos(u)), float32(gomath.Sin(u))
		for s := 0; s < sides; s++ {
			v := 2 * gomath.Pi * float64(s) / float64(sides)
			cv, sv := float32(gomath.Cos(v)), float32(gomath.Sin(v))

			nx, ny, nz := cu*cv, sv, su*cv
			vertices = append(vertices,
				(major+minor*cv)*cu, minor*sv, (major+minor*cv)*su,
				nx, ny, nz,
			)
		}
	}

	indices := make([]uint16, 0, rings*sides*6)
	at := func(r, s int) uint16 {
		return uint16((r%rings)*sides + s%sides)
	}
	for r := 0; r < rings; r++ {
		for s := 0; s < sides; s++ {
			a, b := at(r, s), at(r+1, s)
			c, d := at(r+1, s+1), at(r, s+1)
			indices = append(indices, a, b, c, a, c, d)
		}
	}

	opts := mesh.DefaultOptions()
	opts.BoundsMode = mesh.BoundsComputed
	m, err := mesh.BuildFromStreams(vertices, indices, opts)
	if err != nil {
		return nil, fmt.Errorf("building torus: %w", err)
	}
	m.Name = "Torus"
	return m, nil
}
