package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/spatial-viewer/pkg/math"
	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// stream builds a vertex stream from (position, normal) pairs.
func stream(verts ...[6]float32) []float32 {
	var out []float32
	for _, v := range verts {
		out = append(out, v[:]...)
	}
	return out
}

func TestBuildFromStreams_PreservesCountsAndOrder(t *testing.T) {
	vertexData := stream(
		[6]float32{0, 0, 0, 0, 1, 0},
		[6]float32{1, 0, 0, 0, 1, 0},
		[6]float32{1, 0, 1, 1, 0, 0},
		[6]float32{0, 2, 1, 0, 0, -1},
	)
	indexData := []uint16{3, 1, 0, 2, 3, 1}

	for _, layout := range []Layout{LayoutPositionNormal, LayoutPositionNormalColor} {
		t.Run(layout.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = layout

			m, err := BuildFromStreams(vertexData, indexData, opts)
			if err != nil {
				t.Fatalf("BuildFromStreams failed: %v", err)
			}

			if m.VertexCount() != len(vertexData)/6 {
				t.Errorf("expected %d vertices, got %d", len(vertexData)/6, m.VertexCount())
			}
			if m.IndexCount() != len(indexData) {
				t.Errorf("expected %d indices, got %d", len(indexData), m.IndexCount())
			}
			for i, idx := range indexData {
				if m.Indices[i] != idx {
					t.Errorf("index %d: expected %d, got %d", i, idx, m.Indices[i])
				}
			}
			for i, v := range m.Vertices {
				o := i * 6
				want := [3]float32{vertexData[o], vertexData[o+1], vertexData[o+2]}
				if v.Position != want {
					t.Errorf("vertex %d position: expected %v, got %v", i, want, v.Position)
				}
				wantN := [3]float32{vertexData[o+3], vertexData[o+4], vertexData[o+5]}
				if v.Normal != wantN {
					t.Errorf("vertex %d normal: expected %v, got %v", i, wantN, v.Normal)
				}
			}

			r := m.Range
			if r.Primitive != TriangleList || r.IndexStart != 0 || r.IndexCount != len(indexData) || r.VertexCount != 4 {
				t.Errorf("unexpected draw range %+v", r)
			}
			if m.TriangleCount() != 2 {
				t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
			}
		})
	}
}

func TestBuildFromStreams_InputNotAliased(t *testing.T) {
	indexData := []uint16{0, 0, 0}
	m, err := BuildFromStreams(stream([6]float32{0, 0, 0, 0, 1, 0}), indexData, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildFromStreams failed: %v", err)
	}
	indexData[0] = 9
	if m.Indices[0] != 0 {
		t.Error("mesh indices should not alias the input slice")
	}
}

func TestBuildFromStreams_Errors(t *testing.T) {
	one := stream([6]float32{0, 0, 0, 0, 1, 0})
	tests := []struct {
		name     string
		vertices []float32
		indices  []uint16
		want     error
	}{
		{"vertex stride", one[:5], nil, ErrVertexStride},
		{"index stride", one, []uint16{0, 0}, ErrIndexStride},
		{"index out of bounds", one, []uint16{0, 0, 1}, ErrIndexOutOfBounds},
		{"empty", nil, nil, ErrEmptyMesh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildFromStreams(tt.vertices, tt.indices, DefaultOptions())
			if err == nil {
				t.Fatalf("expected error, got mesh %+v", m)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuild_FixedBoundsIgnoreGeometry(t *testing.T) {
	rec := &spatial.SurfaceRecord{
		Label:      "far",
		VertexData: stream([6]float32{50, -20, 7, 0, 1, 0}, [6]float32{60, -20, 7, 0, 1, 0}, [6]float32{50, -10, 7, 0, 1, 0}),
		IndexData:  []uint16{0, 1, 2},
	}

	m, err := Build(rec, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Name != "far" {
		t.Errorf("expected name far, got %q", m.Name)
	}
	want := Bounds{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}
	if m.Bounds != want {
		t.Errorf("expected fixed bounds %v, got %v", want, m.Bounds)
	}

	opts := DefaultOptions()
	opts.BoundsMode = BoundsComputed
	m, err = Build(rec, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want = Bounds{Min: [3]float32{50, -20, 7}, Max: [3]float32{60, -10, 7}}
	if m.Bounds != want {
		t.Errorf("expected computed bounds %v, got %v", want, m.Bounds)
	}
}

func TestSlopeColor(t *testing.T) {
	opts := DefaultOptions()
	tilted := func(angle float64) math.Vec3 {
		return math.Vec3{X: float32(gomath.Sin(angle)), Y: float32(gomath.Cos(angle))}
	}

	tests := []struct {
		name   string
		normal math.Vec3
		want   Color
	}{
		{"up", math.Vec3Up, opts.DefaultColor},
		{"down", math.Vec3{Y: -1}, opts.HighlightColor},
		{"wall", math.Vec3Right, opts.HighlightColor},
		{"just below threshold", tilted(0.29), opts.DefaultColor},
		{"just above threshold", tilted(0.31), opts.HighlightColor},
		{"unnormalized up", math.Vec3{Y: 5}, opts.DefaultColor},
		{"zero normal", math.Vec3{}, opts.DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlopeColor(tt.normal, opts); got != tt.want {
				t.Errorf("SlopeColor(%v) = %v, want %v", tt.normal, got, tt.want)
			}
		})
	}
}

func TestBuild_ColorLayoutTagsVertices(t *testing.T) {
	opts := DefaultOptions()
	opts.Layout = LayoutPositionNormalColor

	m, err := BuildFromStreams(stream(
		[6]float32{0, 0, 0, 0, 1, 0},
		[6]float32{1, 0, 0, 0, -1, 0},
		[6]float32{0, 1, 0, 1, 0, 0},
	), []uint16{0, 1, 2}, opts)
	if err != nil {
		t.Fatalf("BuildFromStreams failed: %v", err)
	}

	if m.Vertices[0].Color != PackColor(opts.DefaultColor) {
		t.Errorf("up-facing vertex should use the default color, got %08x", m.Vertices[0].Color)
	}
	if m.Vertices[1].Color != PackColor(opts.HighlightColor) {
		t.Errorf("down-facing vertex should use the highlight color, got %08x", m.Vertices[1].Color)
	}
	if m.Vertices[2].Color != PackColor(opts.HighlightColor) {
		t.Errorf("wall vertex should use the highlight color, got %08x", m.Vertices[2].Color)
	}

	words := m.Interleaved()
	if len(words) != 3*7 {
		t.Fatalf("expected 21 words, got %d", len(words))
	}
	if gomath.Float32bits(words[6]) != m.Vertices[0].Color {
		t.Error("interleaved color word does not carry the packed bits")
	}
	if m.Stride() != 28 {
		t.Errorf("expected stride 28, got %d", m.Stride())
	}
}

func TestInterleavedPlain(t *testing.T) {
	m, err := BuildFromStreams(stream([6]float32{1, 2, 3, 4, 5, 6}), []uint16{0, 0, 0}, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildFromStreams failed: %v", err)
	}
	words := m.Interleaved()
	want := []float32{1, 2, 3, 4, 5, 6}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d: expected %v, got %v", i, want[i], words[i])
		}
	}
	if m.Stride() != 24 {
		t.Errorf("expected stride 24, got %d", m.Stride())
	}
}
