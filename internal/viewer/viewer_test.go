package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/spatial-viewer/internal/config"
	"github.com/Faultbox/spatial-viewer/internal/engine/cursor"
	"github.com/Faultbox/spatial-viewer/internal/engine/debug"
	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/pkg/math"
	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// wallJSON is a vertical quad facing -Z, placed at (0, 0, z).
func wallJSON(id string, z float32) string {
	return fmt.Sprintf(`{
	"Id": %q,
	"VertexData": [
		-1, -1, 0,  0, 0, -1,
		 1, -1, 0,  0, 0, -1,
		 1,  1, 0,  0, 0, -1,
		-1,  1, 0,  0, 0, -1
	],
	"IndexData": [0, 2, 1, 0, 3, 2],
	"BoundsCenter": {"X": 0, "Y": 0, "Z": %g},
	"BoundsOrientation": {"X": 0, "Y": 0, "Z": 0, "W": 1}
}`, id, z)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func dataConfig(dir string) config.DataConfig {
	cfg := config.Default().Data
	cfg.Dir = dir
	cfg.Workers = 2
	return cfg
}

func TestFindSurfaceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", "{}")
	writeFile(t, dir, "a.json", "{}")
	writeFile(t, dir, "UrhoSpatialMappingData.txt", "{}")
	writeFile(t, dir, "notes.md", "")

	files, err := FindSurfaceFiles(dir, []string{"*.json", "UrhoSpatialMappingData.txt", "a.*"})
	if err != nil {
		t.Fatalf("FindSurfaceFiles failed: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"UrhoSpatialMappingData.txt", "a.json", "b.json"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestLoadSurfaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kitchen.json", wallJSON("k", 10))
	writeFile(t, dir, "broken.json", `{"Id": "x", "VertexData": [1, 2`)
	writeFile(t, dir, "UrhoSpatialMappingData.txt", fmt.Sprintf(`{"b-hall": %s, "a-door": %s, "bad": {"Id": "z"}}`,
		wallJSON("h", 4), wallJSON("d", 6)))

	records, report, err := LoadSurfaces(context.Background(), dataConfig(dir))
	if err != nil {
		t.Fatalf("LoadSurfaces failed: %v", err)
	}

	var names []string
	for _, r := range records {
		names = append(names, r.Name())
	}
	if want := "[a-door b-hall kitchen]"; fmt.Sprint(names) != want {
		t.Errorf("expected %s, got %v", want, names)
	}

	if len(report.Files) != 3 || report.Surfaces != 3 {
		t.Errorf("unexpected report %+v", report)
	}
	failures := report.Failures()
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d: %v", len(failures), failures)
	}
	var sawJSON, sawMissing bool
	for _, f := range failures {
		sawJSON = sawJSON || errors.Is(f, spatial.ErrInvalidJSON)
		sawMissing = sawMissing || errors.Is(f, spatial.ErrMissingField)
	}
	if !sawJSON || !sawMissing {
		t.Errorf("expected invalid JSON and missing field failures, got %v", failures)
	}
}

func TestLoadSurfacesNoFiles(t *testing.T) {
	_, _, err := LoadSurfaces(context.Background(), dataConfig(t.TempDir()))
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}

func TestLoadSurfacesNothingUsable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", "not json")

	_, report, err := LoadSurfaces(context.Background(), dataConfig(dir))
	if !errors.Is(err, ErrNoSurfaces) {
		t.Fatalf("expected ErrNoSurfaces, got %v", err)
	}
	if !errors.Is(err, spatial.ErrInvalidJSON) {
		t.Errorf("cause should be kept, got %v", err)
	}
	if len(report.Failures()) != 1 {
		t.Errorf("expected one failure, got %v", report.Failures())
	}
}

func TestLoadSurfacesCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", wallJSON("a", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := LoadSurfaces(ctx, dataConfig(dir)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func parseWall(t *testing.T, id string, z float32) *spatial.SurfaceRecord {
	t.Helper()
	rec, err := spatial.ParseSurface([]byte(wallJSON(id, z)))
	if err != nil {
		t.Fatalf("parsing wall: %v", err)
	}
	return rec
}

func TestBuildScene(t *testing.T) {
	cfg := config.Default()
	cfg.Mesh.Layout = "position_normal_color"
	records := []*spatial.SurfaceRecord{parseWall(t, "near", 5), parseWall(t, "far", 10)}

	w, err := BuildScene(records, cfg)
	if err != nil {
		t.Fatalf("BuildScene failed: %v", err)
	}
	if len(w.Surfaces) != 2 || w.Skipped != nil {
		t.Fatalf("expected 2 surfaces, got %d (skipped %v)", len(w.Surfaces), w.Skipped)
	}
	if w.Triangles() != 4 {
		t.Errorf("expected 4 triangles, got %d", w.Triangles())
	}

	env := w.Scene.Get(w.Environment)
	if env.Name != EnvironmentNode || math.Abs(env.Scale.X-0.2) > 1e-6 {
		t.Errorf("unexpected environment node %+v", env)
	}

	s := w.Surfaces[0]
	if s.Mesh.Layout != mesh.LayoutPositionNormalColor {
		t.Errorf("layout from config not applied: %v", s.Mesh.Layout)
	}
	n := w.Scene.Get(s.Node)
	if n.Parent() != w.Environment || n.Name != "near" {
		t.Errorf("surface should sit under the environment, got %+v", n)
	}
	pos, _ := w.Scene.WorldPosition(s.Node)
	if !pos.ApproxEqual(math.Vec3{Z: 1}, 1e-5) {
		t.Errorf("environment scale not applied, world position %v", pos)
	}

	lines := w.BoundsLines()
	if len(lines) != 2*debug.BBoxWireframeVertexCount*3 {
		t.Errorf("expected two box wireframes, got %d floats", len(lines))
	}
}

func TestBuildSceneSkipsBadMesh(t *testing.T) {
	good := parseWall(t, "good", 5)
	bad := &spatial.SurfaceRecord{ID: "bad", VertexData: []float32{0, 0, 0, 0, 1, 0}, IndexData: []uint16{0, 1, 2}}

	w, err := BuildScene([]*spatial.SurfaceRecord{good, bad}, config.Default())
	if err != nil {
		t.Fatalf("BuildScene failed: %v", err)
	}
	if len(w.Surfaces) != 1 {
		t.Errorf("expected 1 surface, got %d", len(w.Surfaces))
	}
	if !errors.Is(w.Skipped, mesh.ErrIndexOutOfBounds) {
		t.Errorf("expected index error in Skipped, got %v", w.Skipped)
	}
}

func TestBuildSceneBadMeshConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mesh.Bounds = "sphere"
	if _, err := BuildScene(nil, cfg); err == nil {
		t.Error("expected error for unknown bounds mode")
	}
}

func TestCursorOverBuiltScene(t *testing.T) {
	cfg := config.Default()
	w, err := BuildScene([]*spatial.SurfaceRecord{parseWall(t, "wall", 10)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cam := NewCamera(cfg)
	c, err := NewCursor(w, cfg)
	if err != nil {
		t.Fatalf("NewCursor failed: %v", err)
	}

	var h hud
	c.OnRaycast(func(r cursor.Result) {
		h.target = ""
		if r.Hit != nil {
			h.target = r.Hit.Name
		}
	})

	res := c.Update(cam)
	if res.Hit == nil || res.Hit.Name != "wall" {
		t.Fatalf("expected to hit the wall, got %+v", res.Hit)
	}
	// Environment scale 0.2 moves the wall from z=10 to z=2.
	if !res.MarkerPosition.ApproxEqual(math.Vec3{Z: 2}, 1e-4) {
		t.Errorf("unexpected marker position %v", res.MarkerPosition)
	}
	if h.target != "wall" {
		t.Errorf("listener did not see the hit, target %q", h.target)
	}

	// Turn around: nothing behind the camera.
	cam.Yaw = 180
	res = c.Update(cam)
	if res.Hit != nil || h.target != "" {
		t.Errorf("expected no hit facing away, got %+v", res.Hit)
	}
}

func TestNewLightRig(t *testing.T) {
	cfg := config.Default().Scene
	rig := NewLightRig(cfg)
	if !rig.FollowCamera || rig.Brightness != cfg.LightBrightness {
		t.Errorf("unexpected rig %+v", rig)
	}
	if rig.Direction.Y >= 0 {
		t.Errorf("light above the horizon should point down, got %v", rig.Direction)
	}

	rig.Update(math.Vec3{Z: 1})
	if !rig.Direction.ApproxEqual(math.Vec3{Z: 1}, 1e-6) {
		t.Errorf("camera-following light should track forward, got %v", rig.Direction)
	}
}
