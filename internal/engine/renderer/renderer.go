// Package renderer draws the scene graph with OpenGL 4.1.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/engine/lighting"
	"github.com/Faultbox/spatial-viewer/internal/engine/mesh"
	"github.com/Faultbox/spatial-viewer/internal/engine/scene"
	"github.com/Faultbox/spatial-viewer/internal/engine/shader"
	"github.com/Faultbox/spatial-viewer/internal/logger"
	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background mesh.Color
}

// Frame carries the per-frame camera and lighting state.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Light      lighting.Rig
}

// gpuMesh is a mesh uploaded to GPU buffers.
type gpuMesh struct {
	vao, vbo, ebo uint32
	rng           mesh.DrawRange
	vertexColor   bool
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	surfaces *shader.Program
	lines    *shader.Program

	meshes  map[*mesh.Mesh]*gpuMesh
	lineVAO uint32
	lineVBO uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[*mesh.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// The view matrix mirrors the left-handed world, which flips winding.
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	bg := cfg.Background
	gl.ClearColor(bg.R, bg.G, bg.B, bg.A)

	var err error
	if r.surfaces, err = shader.Compile("surface", surfaceVertexSrc, surfaceFragmentSrc); err != nil {
		return nil, err
	}
	if r.lines, err = shader.Compile("line", lineVertexSrc, lineFragmentSrc); err != nil {
		r.surfaces.Delete()
		return nil, err
	}

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for m, g := range r.meshes {
		g.delete()
		delete(r.meshes, m)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.surfaces != nil {
		r.surfaces.Delete()
	}
	if r.lines != nil {
		r.lines.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Upload copies m into GPU buffers. Meshes are uploaded once and reused.
func (r *Renderer) Upload(m *mesh.Mesh) error {
	if _, ok := r.meshes[m]; ok {
		return nil
	}
	if m.VertexCount() == 0 || m.IndexCount() == 0 {
		return fmt.Errorf("uploading %q: %w", m.Name, mesh.ErrEmptyMesh)
	}

	vertices := m.Interleaved()
	stride := int32(m.Stride())
	g := &gpuMesh{rng: m.Range, vertexColor: m.Layout == mesh.LayoutPositionNormalColor}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	if g.vertexColor {
		gl.VertexAttribPointerWithOffset(2, 4, gl.UNSIGNED_BYTE, true, stride, 6*4)
		gl.EnableVertexAttribArray(2)
	}

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*2, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	r.meshes[m] = g
	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("indices", m.IndexCount()),
		zap.Stringer("layout", m.Layout),
	)
	return nil
}

func (g *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
}

// DrawScene draws every visible drawable. Overlay drawables go last with
// depth testing off so they stay visible through surfaces.
func (r *Renderer) DrawScene(s *scene.Scene, f Frame) {
	viewProj := f.Projection.Mul(f.View)

	r.surfaces.Use()
	r.surfaces.SetMat4("uViewProj", viewProj)
	r.surfaces.SetVec3("uLightDir", f.Light.Direction.Normalize())
	r.surfaces.SetVec3("uAmbient", f.Light.Ambient)
	r.surfaces.SetFloat("uLightBrightness", f.Light.Brightness)

	type overlayDraw struct {
		d     *scene.Drawable
		world math.Mat4
	}
	var overlays []overlayDraw

	s.Walk(func(_ scene.Handle, n *scene.Node, world math.Mat4) {
		d := n.Drawable
		if d == nil || !d.Visible || d.Mesh == nil {
			return
		}
		if d.Material.Overlay {
			overlays = append(overlays, overlayDraw{d, world})
			return
		}
		r.drawMesh(d, world)
	})

	if len(overlays) > 0 {
		gl.Disable(gl.DEPTH_TEST)
		for _, o := range overlays {
			r.drawMesh(o.d, o.world)
		}
		gl.Enable(gl.DEPTH_TEST)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawMesh(d *scene.Drawable, world math.Mat4) {
	g, ok := r.meshes[d.Mesh]
	if !ok {
		if err := r.Upload(d.Mesh); err != nil {
			logger.Warn("skipping drawable", zap.Error(err))
			return
		}
		g = r.meshes[d.Mesh]
	}

	c := d.Material.Color
	r.surfaces.SetMat4("uModel", world)
	r.surfaces.SetVec4("uColor", c.R, c.G, c.B, c.A)
	r.surfaces.SetBool("uVertexColor", g.vertexColor)
	r.surfaces.SetBool("uUnlit", d.Material.Unlit)
	r.surfaces.SetBool("uDoubleSide", d.Material.DoubleSide)

	gl.BindVertexArray(g.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(g.rng.IndexCount), gl.UNSIGNED_SHORT, uintptr(g.rng.IndexStart*2))
}

// DrawLines draws a line list given as [x, y, z] per vertex in world space.
func (r *Renderer) DrawLines(vertices []float32, color mesh.Color, f Frame) {
	if len(vertices) < 6 {
		return
	}

	r.lines.Use()
	r.lines.SetMat4("uViewProj", f.Projection.Mul(f.View))
	r.lines.SetVec4("uColor", color.R, color.G, color.B, color.A)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}
