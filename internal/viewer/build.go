package viewer

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/config"
	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/internal/engine/scene"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/pkg/math"
	"github.com/Faultbox/spatial-viewer/pkg/spatial"
)

// EnvironmentNode names the parent of all surface nodes.
const EnvironmentNode = "Environment"

// Surface is one placed surface.
type Surface struct {
	Node   scene.Handle
	Record *spatial.SurfaceRecord
	Mesh   *mesh.Mesh
}

// World is the scene built from a set of surface records.
type World struct {
	Scene       *scene.Scene
	Environment scene.Handle
	Surfaces    []Surface
	Skipped     error // per-record build failures, combined
}

// MeshOptions converts the mesh config section.
func MeshOptions(cfg config.MeshConfig) (mesh.Options, error) {
	layout, err := mesh.ParseLayout(cfg.Layout)
	if err != nil {
		return mesh.Options{}, err
	}
	bounds, err := mesh.ParseBoundsMode(cfg.Bounds)
	if err != nil {
		return mesh.Options{}, err
	}

	opts := mesh.DefaultOptions()
	opts.Layout = layout
	opts.BoundsMode = bounds
	opts.HalfExtent = cfg.HalfExtent
	opts.SlopeThreshold = cfg.SlopeThreshold
	opts.DefaultColor = colorOf(cfg.DefaultColor)
	opts.HighlightColor = colorOf(cfg.HighlightColor)
	return opts, nil
}

func colorOf(c [4]float32) mesh.Color {
	return mesh.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func vec3Of(v [3]float32) math.Vec3 {
	return math.Vec3FromArray(v)
}

// BuildScene builds meshes for records and places them under a scaled
// environment node. It touches no GPU state. Records whose mesh cannot be
// built are skipped and reported in World.Skipped.
func BuildScene(records []*spatial.SurfaceRecord, cfg *config.Config) (*World, error) {
	opts, err := MeshOptions(cfg.Mesh)
	if err != nil {
		return nil, fmt.Errorf("mesh config: %w", err)
	}

	s := scene.New()
	env, err := s.CreateChild(s.Root(), EnvironmentNode)
	if err != nil {
		return nil, err
	}
	s.Get(env).SetUniformScale(cfg.Scene.EnvironmentScale)

	w := &World{Scene: s, Environment: env}
	surfaceColor := colorOf(cfg.Scene.SurfaceColor)

	for _, rec := range records {
		m, err := mesh.Build(rec, opts)
		if err != nil {
			w.Skipped = multierr.Append(w.Skipped, fmt.Errorf("surface %s: %w", rec.Name(), err))
			logger.Warn("skipping surface mesh", zap.String("surface", rec.Name()), zap.Error(err))
			continue
		}

		h, err := scene.PlaceSurface(s, env, rec.Name(), m, rec.BoundsCenter, rec.BoundsOrientation)
		if err != nil {
			return nil, err
		}
		s.Get(h).Drawable.Material.Color = surfaceColor
		w.Surfaces = append(w.Surfaces, Surface{Node: h, Record: rec, Mesh: m})
	}

	logger.Info("scene built",
		zap.Int("surfaces", len(w.Surfaces)),
		zap.Int("skipped", len(multierr.Errors(w.Skipped))),
		zap.Stringer("layout", opts.Layout),
		zap.Stringer("bounds", opts.BoundsMode),
	)
	return w, nil
}

// Triangles returns the total triangle count of the placed surfaces.
func (w *World) Triangles() int {
	n := 0
	for _, s := range w.Surfaces {
		n += s.Mesh.TriangleCount()
	}
	return n
}
