// Package mesh builds renderable triangle meshes from captured surface streams.
package mesh

import (
	"fmt"
	"strings"

	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// Build errors. They alias the surface record errors so callers can match
// either with errors.Is.
var (
	ErrVertexStride     = spatial.ErrVertexStride
	ErrIndexStride      = spatial.ErrIndexStride
	ErrIndexOutOfBounds = spatial.ErrIndexOutOfBounds
	ErrEmptyMesh        = spatial.ErrEmptySurface
)

// Layout selects the per-vertex attributes of a mesh.
type Layout int

// Vertex layouts.
const (
	LayoutPositionNormal      Layout = iota // position + normal, as captured
	LayoutPositionNormalColor               // adds a packed color derived from the normal
)

// String returns the config name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutPositionNormal:
		return "position_normal"
	case LayoutPositionNormalColor:
		return "position_normal_color"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses a config layout name.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "position_normal", "plain", "":
		return LayoutPositionNormal, nil
	case "position_normal_color", "color", "colored":
		return LayoutPositionNormalColor, nil
	}
	return 0, fmt.Errorf("unknown vertex layout %q", s)
}

// BoundsMode selects how a mesh bounding box is produced.
type BoundsMode int

// Bounds modes.
const (
	// BoundsFixed uses a box of Options.HalfExtent around the origin,
	// regardless of the vertex data.
	BoundsFixed BoundsMode = iota
	// BoundsComputed derives the box from the vertex positions.
	BoundsComputed
)

// String returns the config name of the bounds mode.
func (m BoundsMode) String() string {
	switch m {
	case BoundsFixed:
		return "fixed"
	case BoundsComputed:
		return "computed"
	default:
		return fmt.Sprintf("BoundsMode(%d)", int(m))
	}
}

// ParseBoundsMode parses a config bounds mode name.
func ParseBoundsMode(s string) (BoundsMode, error) {
	switch strings.ToLower(s) {
	case "fixed", "":
		return BoundsFixed, nil
	case "computed":
		return BoundsComputed, nil
	}
	return 0, fmt.Errorf("unknown bounds mode %q", s)
}

// PrimitiveType is the topology of a draw range.
type PrimitiveType int

// TriangleList is the only topology surfaces use.
const TriangleList PrimitiveType = 0

// Vertex is one mesh vertex. Color is only meaningful for
// LayoutPositionNormalColor.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    uint32
}

// DrawRange describes the portion of the buffers a draw call covers.
type DrawRange struct {
	Primitive   PrimitiveType
	IndexStart  int
	IndexCount  int
	VertexStart int
	VertexCount int
}

// Bounds holds an axis-aligned bounding box in mesh space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh holds geometry ready for GPU upload.
type Mesh struct {
	Name     string
	Layout   Layout
	Vertices []Vertex
	Indices  []uint16
	Range    DrawRange
	Bounds   Bounds
}

// Options controls mesh building.
type Options struct {
	Layout     Layout
	BoundsMode BoundsMode
	HalfExtent float32 // BoundsFixed half size on each axis

	// SlopeThreshold is the angle in radians between a normal and world up
	// above which a vertex gets HighlightColor.
	SlopeThreshold float32
	DefaultColor   Color
	HighlightColor Color
}

// DefaultOptions returns the options matching the captured viewer output.
func DefaultOptions() Options {
	return Options{
		Layout:         LayoutPositionNormal,
		BoundsMode:     BoundsFixed,
		HalfExtent:     1.0,
		SlopeThreshold: 0.3,
		DefaultColor:   Color{R: 0.6, G: 0.6, B: 0.6, A: 1},
		HighlightColor: Color{R: 0.2, G: 0.6, B: 1.0, A: 1},
	}
}
