// Package spatial decodes captured spatial-mapping surface dumps.
//
// A dump holds one or more surfaces. Each surface carries an interleaved
// vertex stream (position xyz, normal xyz), a triangle index stream and the
// rigid transform (bounds center and orientation) the mesh is placed under.
package spatial

import (
	"errors"
	"fmt"

	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// FloatsPerVertex is the number of floats per vertex in VertexData.
const FloatsPerVertex = 6

// Surface record errors.
var (
	ErrInvalidJSON      = errors.New("invalid surface JSON")
	ErrMissingField     = errors.New("missing required field")
	ErrVertexStride     = errors.New("vertex data length is not a multiple of 6")
	ErrIndexStride      = errors.New("index data length is not a multiple of 3")
	ErrIndexOutOfBounds = errors.New("index references a vertex past the end of the vertex data")
	ErrIndexRange       = errors.New("index value does not fit in 16 bits")
	ErrEmptySurface     = errors.New("surface has no vertices")
)

// SurfaceRecord is one decoded surface. It is not modified after decoding.
type SurfaceRecord struct {
	ID    string
	Label string // file name or dump key, for display and logs

	VertexData []float32 // px, py, pz, nx, ny, nz per vertex
	IndexData  []uint16  // triangle list

	BoundsCenter      math.Vec3
	BoundsOrientation math.Quat // x, y, z, w
}

// VertexCount returns the number of vertices in VertexData.
func (s *SurfaceRecord) VertexCount() int {
	return len(s.VertexData) / FloatsPerVertex
}

// TriangleCount returns the number of triangles in IndexData.
func (s *SurfaceRecord) TriangleCount() int {
	return len(s.IndexData) / 3
}

// Position returns the position of vertex i.
func (s *SurfaceRecord) Position(i int) math.Vec3 {
	o := i * FloatsPerVertex
	return math.Vec3{X: s.VertexData[o], Y: s.VertexData[o+1], Z: s.VertexData[o+2]}
}

// Normal returns the normal of vertex i.
func (s *SurfaceRecord) Normal(i int) math.Vec3 {
	o := i*FloatsPerVertex + 3
	return math.Vec3{X: s.VertexData[o], Y: s.VertexData[o+1], Z: s.VertexData[o+2]}
}

// Name returns the label, falling back to the ID.
func (s *SurfaceRecord) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// Validate checks the stream invariants. A record that fails validation
// must not be turned into a mesh.
func (s *SurfaceRecord) Validate() error {
	return ValidateStreams(s.VertexData, s.IndexData)
}

// ValidateStreams checks a vertex/index stream pair.
func ValidateStreams(vertexData []float32, indexData []uint16) error {
	if len(vertexData)%FloatsPerVertex != 0 {
		return fmt.Errorf("%w: got %d floats", ErrVertexStride, len(vertexData))
	}
	if len(vertexData) == 0 {
		return ErrEmptySurface
	}
	if len(indexData)%3 != 0 {
		return fmt.Errorf("%w: got %d indices", ErrIndexStride, len(indexData))
	}

	vertexCount := len(vertexData) / FloatsPerVertex
	for i, idx := range indexData {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index[%d] = %d, vertex count %d", ErrIndexOutOfBounds, i, idx, vertexCount)
		}
	}
	return nil
}
