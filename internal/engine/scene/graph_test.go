package scene

import (
	"errors"
	"testing"

	"github.com/Faultbox/spatial-viewer/pkg/math"
)

func TestCreateAndGet(t *testing.T) {
	s := New()
	if s.Len() != 1 {
		t.Fatalf("new scene should hold only the root, got %d nodes", s.Len())
	}

	env, err := s.CreateChild(s.Root(), "Environment")
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	child, err := s.CreateChild(env, "surface")
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	n := s.Get(child)
	if n == nil || n.Name != "surface" {
		t.Fatalf("expected node named surface, got %+v", n)
	}
	if n.Parent() != env {
		t.Errorf("expected parent %v, got %v", env, n.Parent())
	}
	if got := s.Get(env).Children(); len(got) != 1 || got[0] != child {
		t.Errorf("expected env children [%v], got %v", child, got)
	}
	if h, ok := s.FindChild(s.Root(), "Environment"); !ok || h != env {
		t.Errorf("FindChild returned %v, %v", h, ok)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", s.Len())
	}
}

func TestZeroHandleInvalid(t *testing.T) {
	s := New()
	if s.Valid(Handle{}) {
		t.Error("zero handle should be invalid")
	}
	if _, err := s.CreateChild(Handle{}, "x"); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected ErrStaleHandle, got %v", err)
	}
}

func TestRemoveInvalidatesSubtree(t *testing.T) {
	s := New()
	a, _ := s.CreateChild(s.Root(), "a")
	b, _ := s.CreateChild(a, "b")
	c, _ := s.CreateChild(b, "c")
	keep, _ := s.CreateChild(s.Root(), "keep")

	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	for _, h := range []Handle{a, b, c} {
		if s.Valid(h) {
			t.Errorf("%v should be stale after removing its ancestor", h)
		}
	}
	if !s.Valid(keep) {
		t.Error("sibling should survive")
	}
	if got := s.Get(s.Root()).Children(); len(got) != 1 || got[0] != keep {
		t.Errorf("root children should be [keep], got %v", got)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", s.Len())
	}

	if err := s.Remove(a); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("second remove should fail with ErrStaleHandle, got %v", err)
	}
	if err := s.Remove(s.Root()); !errors.Is(err, ErrRemoveRoot) {
		t.Errorf("expected ErrRemoveRoot, got %v", err)
	}
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	s := New()
	old, _ := s.CreateChild(s.Root(), "old")
	if err := s.Remove(old); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	fresh, _ := s.CreateChild(s.Root(), "fresh")
	if fresh.index != old.index {
		t.Fatalf("expected slot %d to be reused, got %d", old.index, fresh.index)
	}
	if fresh == old {
		t.Fatal("reused slot must carry a new generation")
	}
	if s.Get(old) != nil {
		t.Error("old handle must not resolve to the new node")
	}
	if n := s.Get(fresh); n == nil || n.Name != "fresh" {
		t.Errorf("fresh handle should resolve, got %+v", n)
	}
}

func TestWorldTransform(t *testing.T) {
	s := New()
	env, _ := s.CreateChild(s.Root(), "env")
	s.Get(env).SetUniformScale(0.2)

	child, _ := s.CreateChild(env, "child")
	n := s.Get(child)
	n.Position = math.Vec3{X: 10}
	n.Rotation = math.QuatFromAxisAngle(math.Vec3Up, math.Radians(90))

	pos, err := s.WorldPosition(child)
	if err != nil {
		t.Fatalf("WorldPosition failed: %v", err)
	}
	if !pos.ApproxEqual(math.Vec3{X: 2}, 1e-5) {
		t.Errorf("expected world position (2,0,0), got %v", pos)
	}

	world, _ := s.WorldTransform(child)
	got := world.TransformPoint(math.Vec3{X: 1})
	// local +X rotates to -Z, then scaled by 0.2 and offset by (2,0,0)
	if !got.ApproxEqual(math.Vec3{X: 2, Z: -0.2}, 1e-5) {
		t.Errorf("expected (2,0,-0.2), got %v", got)
	}

	var visited []string
	s.Walk(func(_ Handle, n *Node, _ math.Mat4) {
		visited = append(visited, n.Name)
	})
	if len(visited) != 3 || visited[0] != "Scene" || visited[2] != "child" {
		t.Errorf("unexpected walk order %v", visited)
	}
}
