package viewer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/config"
	"github.com/Faultbox/spatial-viewer/internal/engine/camera"
	"github.com/Faultbox/spatial-viewer/internal/engine/cursor"
	"github.com/Faultbox/spatial-viewer/internal/engine/debug"
	"github.com/Faultbox/spatial-viewer/internal/engine/input"
	"github.com/Faultbox/spatial-viewer/internal/engine/input/sdlinput"
	"github.com/Faultbox/spatial-viewer/internal/engine/lighting"
	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/internal/engine/renderer"
	"github.com/Faultbox/spatial-viewer/internal/engine/window"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// maxFrameTime caps dt so a stall does not fling the camera.
const maxFrameTime = 0.25

var boundsColor = mesh.Color{R: 1, G: 0.8, B: 0.2, A: 1}

// App is the interactive viewer.
type App struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *sdlinput.Source

	world  *World
	camera *camera.FreeCamera
	cursor *cursor.Cursor
	shots  *debug.Screenshots

	hud        hud
	showBounds bool
	light      lighting.Rig
}

// New loads the surfaces, opens the window and prepares the scene.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg:        cfg,
		log:        logger.Named("viewer"),
		showBounds: cfg.Graphics.ShowBounds,
		light:      NewLightRig(cfg.Scene),
		shots:      debug.NewScreenshots("screenshots", "spatial"),
	}

	records, report, err := LoadSurfaces(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	for _, e := range report.Failures() {
		a.log.Warn("surface not loaded", zap.Error(e))
	}

	a.world, err = BuildScene(records, cfg)
	if err != nil {
		return nil, err
	}
	if len(a.world.Surfaces) == 0 {
		return nil, fmt.Errorf("%w: every mesh failed to build", ErrNoSurfaces)
	}

	a.camera = NewCamera(cfg)
	a.cursor, err = NewCursor(a.world, cfg)
	if err != nil {
		return nil, err
	}
	a.hud.surfaces = len(a.world.Surfaces)
	a.cursor.OnRaycast(func(r cursor.Result) {
		a.hud.target = ""
		if r.Hit != nil {
			a.hud.target = r.Hit.Name
		}
	})

	a.window, err = window.New(window.Config{
		Title:      AppName,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		Background: colorOf(cfg.Graphics.Background),
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	a.camera.SetViewport(w, h)

	for _, s := range a.world.Surfaces {
		if err := a.renderer.Upload(s.Mesh); err != nil {
			a.log.Warn("surface not uploaded", zap.String("surface", s.Record.Name()), zap.Error(err))
			a.world.Scene.Get(s.Node).Drawable.Visible = false
		}
	}

	a.input = sdlinput.New()

	a.log.Info("viewer initialized",
		zap.Int("surfaces", len(a.world.Surfaces)),
		zap.Int("triangles", a.world.Triangles()),
	)
	return a, nil
}

// NewCamera creates the free camera from config.
func NewCamera(cfg *config.Config) *camera.FreeCamera {
	c := camera.New()
	c.Position = vec3Of(cfg.Camera.Start)
	c.Yaw = cfg.Camera.Yaw
	c.Pitch = math.Clamp(cfg.Camera.Pitch, camera.MinPitch, camera.MaxPitch)
	c.Sensitivity = cfg.Camera.Sensitivity
	c.MoveSpeed = cfg.Camera.MoveSpeed
	c.Fov = cfg.Graphics.FOV
	c.Near = cfg.Graphics.Near
	c.Far = cfg.Graphics.Far
	c.SetViewport(cfg.Graphics.Width, cfg.Graphics.Height)
	return c
}

// NewLightRig creates the scene lighting from config.
func NewLightRig(cfg config.SceneConfig) lighting.Rig {
	return lighting.Rig{
		Ambient:      vec3Of(cfg.Ambient),
		Direction:    lighting.DirectionFromAngles(cfg.LightYaw, cfg.LightElevation),
		Brightness:   cfg.LightBrightness,
		FollowCamera: cfg.LightFollowCamera,
	}
}

// NewCursor creates the gaze cursor and its torus marker in w's scene.
func NewCursor(w *World, cfg *config.Config) (*cursor.Cursor, error) {
	marker, err := debug.GenerateTorus(1, 0.25, 32, 12)
	if err != nil {
		return nil, err
	}
	opts := cursor.DefaultOptions()
	opts.Enabled = cfg.Cursor.Enabled
	opts.MaxDistance = cfg.Cursor.MaxDistance
	opts.FallbackDistance = cfg.Cursor.FallbackDistance
	opts.MarkerScale = cfg.Cursor.MarkerScale
	opts.Color = colorOf(cfg.Cursor.Color)
	return cursor.New(w.Scene, marker, opts)
}

// Run drives frames until the window is closed.
func (a *App) Run() error {
	a.running = true
	last := time.Now()

	a.log.Info("starting frame loop")
	for a.running {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if dt > maxFrameTime {
			dt = maxFrameTime
		}

		ev := a.input.Poll()
		if ev.Quit {
			a.running = false
			break
		}
		if ev.Resized {
			w, h := a.window.DrawableSize()
			a.renderer.Resize(w, h)
			a.camera.SetViewport(w, h)
		}
		a.handleKeys(ev)

		a.update(dt)
		a.render()
		if ev.WasPressed(input.KeyF12) {
			a.screenshot()
		}
		a.window.SwapBuffers()

		a.hud.frame(dt)
		a.hud.paused = a.input.FocusCaptured()
		a.window.SetTitle(a.hud.title())
	}
	return nil
}

func (a *App) handleKeys(ev input.Events) {
	if ev.WasPressed(input.KeyF1) {
		a.showBounds = !a.showBounds
		a.log.Debug("bounds overlay toggled", zap.Bool("visible", a.showBounds))
	}
	if ev.WasPressed(input.KeyF2) {
		a.cursor.SetEnabled(!a.cursor.Enabled)
		a.log.Debug("cursor toggled", zap.Bool("enabled", a.cursor.Enabled))
	}
}

// update advances one frame: camera, light, then the cursor probe.
func (a *App) update(dt float32) {
	a.camera.Update(a.input, dt)
	a.light.Update(a.camera.Forward())
	a.cursor.Update(a.camera)
	a.cursor.Animate(dt)
}

func (a *App) render() {
	f := renderer.Frame{
		View:       a.camera.ViewMatrix(),
		Projection: a.camera.ProjectionMatrix(),
		Light:      a.light,
	}

	a.renderer.Begin()
	a.renderer.DrawScene(a.world.Scene, f)
	if a.showBounds {
		a.renderer.DrawLines(a.world.BoundsLines(), boundsColor, f)
	}
}

// BoundsLines returns the wireframe of every surface's bounding box in
// world space.
func (w *World) BoundsLines() []float32 {
	var out []float32
	for _, s := range w.Surfaces {
		world, err := w.Scene.WorldTransform(s.Node)
		if err != nil {
			continue
		}
		out = append(out, debug.GenerateBoundsWireframe(s.Mesh.Bounds, world)...)
	}
	return out
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.Save(pixels, w, h)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU and window resources.
func (a *App) Close() {
	a.log.Info("closing viewer")
	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}
