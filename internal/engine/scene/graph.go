// Package scene holds the viewer's scene graph: an arena of nodes addressed
// by generation-counted handles, each with a local transform, children and
// an optional drawable.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Scene errors.
var (
	ErrStaleHandle = errors.New("stale or invalid node handle")
	ErrRemoveRoot  = errors.New("cannot remove the root node")
)

// DefaultViewMask makes a drawable visible to every ray query.
const DefaultViewMask uint32 = 0xFFFFFFFF

// Handle addresses a node. The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

// String formats the handle for logs.
func (h Handle) String() string {
	return fmt.Sprintf("node#%d.%d", h.index, h.generation)
}

// Material describes how a drawable is shaded.
type Material struct {
	Color      mesh.Color // used when the mesh has no vertex colors
	Overlay    bool       // drawn after the scene without depth testing
	Unlit      bool
	DoubleSide bool
}

// Drawable attaches a mesh to a node.
type Drawable struct {
	Mesh     *mesh.Mesh
	Material Material
	ViewMask uint32 // ray queries only see drawables sharing a mask bit
	Visible  bool
}

// Node is one scene graph node. Transform fields are local to the parent.
type Node struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Drawable *Drawable

	parent   Handle
	children []Handle
}

// LocalTransform returns translation * rotation * scale.
func (n *Node) LocalTransform() math.Mat4 {
	return math.FromTRS(n.Position, n.Rotation, n.Scale)
}

// SetUniformScale sets the same scale on every axis.
func (n *Node) SetUniformScale(s float32) {
	n.Scale = math.Vec3{X: s, Y: s, Z: s}
}

// Parent returns the parent handle (zero for the root).
func (n *Node) Parent() Handle {
	return n.parent
}

// Children returns a copy of the child handles.
func (n *Node) Children() []Handle {
	out := make([]Handle, len(n.children))
	copy(out, n.children)
	return out
}

type slot struct {
	node       *Node
	generation uint32
}

// Scene is the node arena. It is not safe for concurrent use; the viewer
// only touches it from the render thread.
type Scene struct {
	slots []slot
	free  []uint32
	root  Handle
	count int
}

// New creates a scene containing only the root node.
func New() *Scene {
	s := &Scene{}
	s.root = s.alloc(&Node{Name: "Scene", Rotation: math.QuatIdentity(), Scale: math.Vec3{X: 1, Y: 1, Z: 1}})
	return s
}

// Root returns the root node handle.
func (s *Scene) Root() Handle {
	return s.root
}

// Len returns the number of live nodes, root included.
func (s *Scene) Len() int {
	return s.count
}

// Get returns the node for h, or nil if h is stale.
func (s *Scene) Get(h Handle) *Node {
	if h.IsZero() || int(h.index) >= len(s.slots) {
		return nil
	}
	sl := s.slots[h.index]
	if sl.node == nil || sl.generation != h.generation {
		return nil
	}
	return sl.node
}

// Valid reports whether h refers to a live node.
func (s *Scene) Valid(h Handle) bool {
	return s.Get(h) != nil
}

// CreateChild adds an identity-transformed node under parent.
func (s *Scene) CreateChild(parent Handle, name string) (Handle, error) {
	p := s.Get(parent)
	if p == nil {
		return Handle{}, fmt.Errorf("create child %q: %w", name, ErrStaleHandle)
	}
	h := s.alloc(&Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		parent:   parent,
	})
	p.children = append(p.children, h)
	return h, nil
}

// Remove destroys h and its subtree. Handles to removed nodes become stale
// and their slots are reused with a new generation.
func (s *Scene) Remove(h Handle) error {
	n := s.Get(h)
	if n == nil {
		return fmt.Errorf("remove %s: %w", h, ErrStaleHandle)
	}
	if h == s.root {
		return ErrRemoveRoot
	}

	if p := s.Get(n.parent); p != nil {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	s.release(h)
	return nil
}

// WorldTransform composes the local transforms from the root down to h.
func (s *Scene) WorldTransform(h Handle) (math.Mat4, error) {
	n := s.Get(h)
	if n == nil {
		return math.Identity(), fmt.Errorf("world transform %s: %w", h, ErrStaleHandle)
	}
	m := n.LocalTransform()
	for p := s.Get(n.parent); p != nil; p = s.Get(p.parent) {
		m = p.LocalTransform().Mul(m)
	}
	return m, nil
}

// WorldPosition returns the world-space origin of h.
func (s *Scene) WorldPosition(h Handle) (math.Vec3, error) {
	m, err := s.WorldTransform(h)
	if err != nil {
		return math.Vec3{}, err
	}
	return m.Translation(), nil
}

// Walk visits every node depth-first from the root with its world transform.
func (s *Scene) Walk(fn func(h Handle, n *Node, world math.Mat4)) {
	s.walk(s.root, math.Identity(), fn)
}

func (s *Scene) walk(h Handle, parentWorld math.Mat4, fn func(Handle, *Node, math.Mat4)) {
	n := s.Get(h)
	if n == nil {
		return
	}
	world := parentWorld.Mul(n.LocalTransform())
	fn(h, n, world)
	for _, c := range n.children {
		s.walk(c, world, fn)
	}
}

// FindChild returns the first direct child of parent with the given name.
func (s *Scene) FindChild(parent Handle, name string) (Handle, bool) {
	p := s.Get(parent)
	if p == nil {
		return Handle{}, false
	}
	for _, c := range p.children {
		if n := s.Get(c); n != nil && n.Name == name {
			return c, true
		}
	}
	return Handle{}, false
}

func (s *Scene) alloc(n *Node) Handle {
	s.count++
	if len(s.free) > 0 {
		idx := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
		s.slots[idx].node = n
		return Handle{index: idx, generation: s.slots[idx].generation}
	}
	s.slots = append(s.slots, slot{node: n, generation: 1})
	return Handle{index: uint32(len(s.slots) - 1), generation: 1}
}

func (s *Scene) release(h Handle) {
	n := s.slots[h.index].node
	for _, c := range n.children {
		if s.Get(c) != nil {
			s.release(c)
		}
	}
	s.slots[h.index].node = nil
	s.slots[h.index].generation++
	if s.slots[h.index].generation == 0 {
		s.slots[h.index].generation = 1
	}
	s.free = append(s.free, h.index)
	s.count--
}
