package scene

import (
	"testing"

	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/internal/engine/picking"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// quad returns a square in the local XY plane with the given half size.
func quad(t *testing.T, half float32, opts mesh.Options) *mesh.Mesh {
	t.Helper()
	h := half
	m, err := mesh.BuildFromStreams([]float32{
		-h, -h, 0, 0, 0, -1,
		h, -h, 0, 0, 0, -1,
		h, h, 0, 0, 0, -1,
		-h, h, 0, 0, 0, -1,
	}, []uint16{0, 2, 1, 0, 3, 2}, opts)
	if err != nil {
		t.Fatalf("building quad: %v", err)
	}
	return m
}

func placeQuad(t *testing.T, s *Scene, name string, z float32, m *mesh.Mesh) Handle {
	t.Helper()
	h, err := PlaceSurface(s, s.Root(), name, m, math.Vec3{Z: z}, math.QuatIdentity())
	if err != nil {
		t.Fatalf("PlaceSurface failed: %v", err)
	}
	return h
}

func TestRaycastSingle_PlaneAhead(t *testing.T) {
	s := New()
	wall := placeQuad(t, s, "wall", 10, quad(t, 1, mesh.DefaultOptions()))

	ray := picking.NewRay(math.Vec3{X: 0.25, Y: -0.5}, math.Vec3Forward)
	hit, ok := s.RaycastSingle(ray, 100, 0x70000000)
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.Node != wall || hit.Name != "wall" {
		t.Errorf("expected wall, got %v %q", hit.Node, hit.Name)
	}
	if !hit.Position.ApproxEqual(math.Vec3{X: 0.25, Y: -0.5, Z: 10}, 1e-4) {
		t.Errorf("hit position should lie on the plane, got %v", hit.Position)
	}
	if math.Abs(hit.Distance-10) > 1e-4 {
		t.Errorf("expected distance 10, got %v", hit.Distance)
	}
	if !hit.Normal.ApproxEqual(math.Vec3{Z: -1}, 1e-5) {
		t.Errorf("normal should face the ray origin, got %v", hit.Normal)
	}
}

func TestRaycastSingle_Nearest(t *testing.T) {
	s := New()
	m := quad(t, 1, mesh.DefaultOptions())
	placeQuad(t, s, "far", 20, m)
	near := placeQuad(t, s, "near", 5, m)

	hit, ok := s.RaycastSingle(picking.NewRay(math.Vec3{}, math.Vec3Forward), 100, DefaultViewMask)
	if !ok || hit.Node != near {
		t.Fatalf("expected nearest surface, got %+v", hit)
	}
}

func TestRaycastSingle_MaxDistance(t *testing.T) {
	s := New()
	placeQuad(t, s, "distant", 150, quad(t, 1, mesh.DefaultOptions()))

	if hit, ok := s.RaycastSingle(picking.NewRay(math.Vec3{}, math.Vec3Forward), 100, DefaultViewMask); ok {
		t.Errorf("expected no hit past max distance, got %+v", hit)
	}
}

func TestRaycastSingle_ViewMaskExcludes(t *testing.T) {
	s := New()
	marker := placeQuad(t, s, "marker", 2, quad(t, 1, mesh.DefaultOptions()))
	s.Get(marker).Drawable.ViewMask = 0x80000000
	wall := placeQuad(t, s, "wall", 10, quad(t, 1, mesh.DefaultOptions()))

	hit, ok := s.RaycastSingle(picking.NewRay(math.Vec3{}, math.Vec3Forward), 100, 0x70000000)
	if !ok || hit.Node != wall {
		t.Fatalf("marker should be skipped by the query mask, got %+v", hit)
	}

	s.Get(wall).Drawable.Visible = false
	if hit, ok := s.RaycastSingle(picking.NewRay(math.Vec3{}, math.Vec3Forward), 100, 0x70000000); ok {
		t.Errorf("hidden drawable should not be hit, got %+v", hit)
	}
}

func TestRaycastSingle_FixedBoundsCull(t *testing.T) {
	// Geometry reaches x=3 but the fixed box only covers [-1, 1]
	s := New()
	placeQuad(t, s, "wide", 10, quad(t, 3, mesh.DefaultOptions()))
	ray := picking.NewRay(math.Vec3{X: 2}, math.Vec3Forward)

	if hit, ok := s.RaycastSingle(ray, 100, DefaultViewMask); ok {
		t.Errorf("fixed bounds should hide geometry outside the box, got %+v", hit)
	}

	opts := mesh.DefaultOptions()
	opts.BoundsMode = mesh.BoundsComputed
	s = New()
	placeQuad(t, s, "wide", 10, quad(t, 3, opts))
	if _, ok := s.RaycastSingle(ray, 100, DefaultViewMask); !ok {
		t.Error("computed bounds should expose the whole quad")
	}
}

func TestRaycastSingle_TransformedSurface(t *testing.T) {
	s := New()
	env, _ := s.CreateChild(s.Root(), "env")
	s.Get(env).SetUniformScale(0.5)

	// Rotated so the quad lies flat, facing up, 4 units below the origin
	rot := math.QuatFromAxisAngle(math.Vec3Right, math.Radians(90))
	if _, err := PlaceSurface(s, env, "floor", quad(t, 1, mesh.DefaultOptions()), math.Vec3{Y: -8}, rot); err != nil {
		t.Fatalf("PlaceSurface failed: %v", err)
	}

	hit, ok := s.RaycastSingle(picking.NewRay(math.Vec3{}, math.Vec3{Y: -1}), 100, DefaultViewMask)
	if !ok {
		t.Fatal("expected hit on floor")
	}
	if !hit.Position.ApproxEqual(math.Vec3{Y: -4}, 1e-4) {
		t.Errorf("expected hit at (0,-4,0), got %v", hit.Position)
	}
	if math.Abs(hit.Distance-4) > 1e-4 {
		t.Errorf("expected world distance 4, got %v", hit.Distance)
	}
	if !hit.Normal.ApproxEqual(math.Vec3Up, 1e-4) {
		t.Errorf("expected up normal, got %v", hit.Normal)
	}
}
