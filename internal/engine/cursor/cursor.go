// Package cursor implements the gaze cursor: each frame a ray is cast
// through the middle of the view and a marker is dropped where it meets a
// surface.
package cursor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/internal/engine/picking"
	"github.com/Faultbox/spatial-viewer/internal/engine/scene"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// View masks. Surfaces keep scene.DefaultViewMask, which overlaps QueryMask.
const (
	MarkerMask uint32 = 0x80000000
	QueryMask  uint32 = 0x70000000
)

// Viewpoint is what the cursor needs from a camera.
type Viewpoint interface {
	ScreenRay(x, y float32) picking.Ray
	Forward() math.Vec3
	WorldPosition() math.Vec3
}

// Options configures the cursor.
type Options struct {
	Enabled          bool
	MaxDistance      float32
	FallbackDistance float32 // marker distance along forward when nothing is hit
	MarkerScale      float32
	PulseHigh        float32
	PulseLow         float32
	PulseDuration    float32 // seconds per half cycle
	Color            mesh.Color
}

// DefaultOptions returns the standard cursor settings.
func DefaultOptions() Options {
	return Options{
		Enabled:          true,
		MaxDistance:      100,
		FallbackDistance: 5,
		MarkerScale:      0.05,
		PulseHigh:        0.06,
		PulseLow:         0.04,
		PulseDuration:    0.3,
		Color:            mesh.Color{R: 0, G: 1, B: 1, A: 1},
	}
}

// Result is one frame's probe outcome. Hit is nil when the ray found no
// surface within range.
type Result struct {
	Ray            picking.Ray
	Hit            *scene.RayHit
	MarkerPosition math.Vec3
	MarkerRotation math.Quat
}

// Cursor owns the marker nodes and the raycast listeners.
type Cursor struct {
	Enabled bool

	opts      Options
	scene     *scene.Scene
	node      scene.Handle
	model     scene.Handle
	listeners []func(Result)
	last      string // surface under the cursor last frame
	log       *zap.Logger

	pulseFrom, pulseTo float32
	pulseTime          float32
}

// New creates the marker under the scene root. The marker mesh is drawn as
// an overlay and never seen by the probe.
func New(s *scene.Scene, marker *mesh.Mesh, opts Options) (*Cursor, error) {
	node, err := s.CreateChild(s.Root(), "Cursor")
	if err != nil {
		return nil, fmt.Errorf("creating cursor node: %w", err)
	}
	model, err := s.CreateChild(node, "CursorModel")
	if err != nil {
		return nil, fmt.Errorf("creating cursor model: %w", err)
	}

	m := s.Get(model)
	m.SetUniformScale(opts.MarkerScale)
	m.Drawable = &scene.Drawable{
		Mesh:     marker,
		ViewMask: MarkerMask,
		Visible:  opts.Enabled,
		Material: scene.Material{Color: opts.Color, Overlay: true, Unlit: true, DoubleSide: true},
	}

	return &Cursor{
		Enabled:   opts.Enabled,
		opts:      opts,
		scene:     s,
		node:      node,
		model:     model,
		log:       logger.Named("cursor"),
		pulseFrom: opts.MarkerScale,
		pulseTo:   opts.PulseHigh,
	}, nil
}

// Node returns the marker's root node.
func (c *Cursor) Node() scene.Handle {
	return c.node
}

// OnRaycast registers fn to receive every frame's result, hit or not,
// including frames where the cursor is disabled.
func (c *Cursor) OnRaycast(fn func(Result)) {
	c.listeners = append(c.listeners, fn)
}

// SetEnabled shows or hides the marker.
func (c *Cursor) SetEnabled(on bool) {
	c.Enabled = on
	if m := c.scene.Get(c.model); m != nil && m.Drawable != nil {
		m.Drawable.Visible = on
	}
}

// Update casts the probe ray, moves the marker and notifies listeners.
func (c *Cursor) Update(view Viewpoint) Result {
	ray := view.ScreenRay(0.5, 0.5)
	res := Result{Ray: ray, MarkerRotation: math.QuatIdentity()}

	if hit, ok := c.scene.RaycastSingle(ray, c.opts.MaxDistance, QueryMask); ok {
		res.Hit = hit
		res.MarkerPosition = hit.Position
		res.MarkerRotation = math.QuatAlignUp(hit.Normal, math.Vec3Up)
	} else {
		res.MarkerPosition = view.WorldPosition().Add(view.Forward().Scale(c.opts.FallbackDistance))
	}

	if c.Enabled {
		if n := c.scene.Get(c.node); n != nil {
			n.Position = res.MarkerPosition
			n.Rotation = res.MarkerRotation
		}
	}

	c.trackSurface(res)
	for _, fn := range c.listeners {
		fn(res)
	}
	return res
}

func (c *Cursor) trackSurface(res Result) {
	name := ""
	if res.Hit != nil {
		name = res.Hit.Name
	}
	if name == c.last {
		return
	}
	c.last = name
	if name == "" {
		c.log.Debug("cursor left surfaces")
		return
	}
	c.log.Debug("cursor over surface",
		zap.String("surface", name),
		zap.Float32("distance", res.Hit.Distance),
	)
}

// Animate advances the marker pulse, which eases the model scale back and
// forth between PulseHigh and PulseLow.
func (c *Cursor) Animate(dt float32) {
	if c.opts.PulseDuration <= 0 {
		return
	}
	c.pulseTime += dt
	for c.pulseTime >= c.opts.PulseDuration {
		c.pulseTime -= c.opts.PulseDuration
		c.pulseFrom = c.pulseTo
		if c.pulseTo == c.opts.PulseHigh {
			c.pulseTo = c.opts.PulseLow
		} else {
			c.pulseTo = c.opts.PulseHigh
		}
	}

	f := c.pulseTime / c.opts.PulseDuration
	if m := c.scene.Get(c.model); m != nil {
		m.SetUniformScale(c.pulseFrom + (c.pulseTo-c.pulseFrom)*f)
	}
}
