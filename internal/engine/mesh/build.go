package mesh

import (
	gomath "math"

	"github.com/Faultbox/spatial-viewer/pkg/math"
	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// Build creates a mesh from a surface record.
func Build(rec *spatial.SurfaceRecord, opts Options) (*Mesh, error) {
	m, err := BuildFromStreams(rec.VertexData, rec.IndexData, opts)
	if err != nil {
		return nil, err
	}
	m.Name = rec.Name()
	return m, nil
}

// BuildFromStreams creates a mesh from an interleaved position+normal
// stream and a triangle index stream. Vertex and index order are kept.
// Indices past the vertex count are rejected, never clamped.
func BuildFromStreams(vertexData []float32, indexData []uint16, opts Options) (*Mesh, error) {
	if err := spatial.ValidateStreams(vertexData, indexData); err != nil {
		return nil, err
	}

	vertexCount := len(vertexData) / spatial.FloatsPerVertex
	vertices := make([]Vertex, vertexCount)
	for i := range vertices {
		o := i * spatial.FloatsPerVertex
		v := Vertex{
			Position: [3]float32{vertexData[o], vertexData[o+1], vertexData[o+2]},
			Normal:   [3]float32{vertexData[o+3], vertexData[o+4], vertexData[o+5]},
		}
		if opts.Layout == LayoutPositionNormalColor {
			v.Color = PackColor(SlopeColor(math.Vec3FromArray(v.Normal), opts))
		}
		vertices[i] = v
	}

	indices := make([]uint16, len(indexData))
	copy(indices, indexData)

	m := &Mesh{
		Layout:   opts.Layout,
		Vertices: vertices,
		Indices:  indices,
		Range: DrawRange{
			Primitive:   TriangleList,
			IndexStart:  0,
			IndexCount:  len(indices),
			VertexStart: 0,
			VertexCount: vertexCount,
		},
	}

	switch opts.BoundsMode {
	case BoundsComputed:
		m.Bounds = computeBounds(vertices)
	default:
		h := opts.HalfExtent
		m.Bounds = Bounds{Min: [3]float32{-h, -h, -h}, Max: [3]float32{h, h, h}}
	}

	return m, nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Triangle returns the positions of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c math.Vec3) {
	o := i * 3
	return math.Vec3FromArray(m.Vertices[m.Indices[o]].Position),
		math.Vec3FromArray(m.Vertices[m.Indices[o+1]].Position),
		math.Vec3FromArray(m.Vertices[m.Indices[o+2]].Position)
}

// TriangleCount returns the number of triangles in the draw range.
func (m *Mesh) TriangleCount() int {
	return m.Range.IndexCount / 3
}

// Stride returns the size of one interleaved vertex in bytes.
func (m *Mesh) Stride() int {
	return m.Layout.FloatsPerVertex() * 4
}

// FloatsPerVertex returns the interleaved vertex size in 32-bit words.
func (l Layout) FloatsPerVertex() int {
	if l == LayoutPositionNormalColor {
		return 7
	}
	return 6
}

// Interleaved returns the vertex stream in upload order. In the color
// layout the packed color occupies the seventh word as raw bits.
func (m *Mesh) Interleaved() []float32 {
	n := m.Layout.FloatsPerVertex()
	out := make([]float32, 0, len(m.Vertices)*n)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2], v.Normal[0], v.Normal[1], v.Normal[2])
		if m.Layout == LayoutPositionNormalColor {
			out = append(out, gomath.Float32frombits(v.Color))
		}
	}
	return out
}

// Center returns the center of the box.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent of the box on each axis.
func (b Bounds) Size() math.Vec3 {
	return math.Vec3{X: b.Max[0] - b.Min[0], Y: b.Max[1] - b.Min[1], Z: b.Max[2] - b.Min[2]}
}

func computeBounds(vertices []Vertex) Bounds {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := range vertices {
		p := vertices[i].Position
		for axis := 0; axis < 3; axis++ {
			if p[axis] < b.Min[axis] {
				b.Min[axis] = p[axis]
			}
			if p[axis] > b.Max[axis] {
				b.Max[axis] = p[axis]
			}
		}
	}
	return b
}
