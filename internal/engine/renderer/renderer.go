// Package renderer provides OpenGL rendering of the model scene.
package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/engine/debug"
	"github.com/Faultbox/phoneview/internal/engine/lighting"
	"github.com/Faultbox/phoneview/internal/engine/shader"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [3]float32
	Lights     lighting.Rig
	Highlight  [4]float32 // base color of the highlighted part
}

// Frame is everything one draw needs.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Root       *scene.Node
	Highlight  *scene.Node
}

// gpuPrimitive is an uploaded scene.Primitive.
type gpuPrimitive struct {
	vao, vbo, ebo uint32
	indexCount    int32
	texture       uint32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	meshProgram *shader.Program
	lineProgram *shader.Program

	primitives map[*scene.Primitive]*gpuPrimitive
	textures   map[image.Image]uint32
	whiteTex   uint32

	lineVAO, lineVBO uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		log:        logger.Named("renderer"),
		primitives: make(map[*scene.Primitive]*gpuPrimitive),
		textures:   make(map[image.Image]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.MULTISAMPLE)
	r.SetBackground(cfg.Background)

	var err error
	if r.meshProgram, err = shader.New(meshVertexShader, meshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	if r.lineProgram, err = shader.New(lineVertexShader, lineFragmentShader); err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	r.whiteTex = uploadTexture(image.White, 1, 1)
	r.createLineBuffer()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.Release()
	if r.whiteTex != 0 {
		gl.DeleteTextures(1, &r.whiteTex)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	r.meshProgram.Delete()
	r.lineProgram.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetBackground sets the clear color.
func (r *Renderer) SetBackground(c [3]float32) {
	r.config.Background = c
	gl.ClearColor(c[0], c[1], c[2], 1.0)
}

// Upload creates GPU buffers for every primitive below root. Primitives
// already uploaded are skipped.
func (r *Renderer) Upload(root *scene.Node) {
	var count int
	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		for _, p := range n.Mesh.Primitives {
			if _, ok := r.primitives[p]; ok || len(p.Indices) == 0 || len(p.Vertices) == 0 {
				continue
			}
			r.primitives[p] = r.uploadPrimitive(p)
			count++
		}
	})
	r.log.Debug("model uploaded", zap.Int("primitives", count), zap.Int("textures", len(r.textures)))
}

// Release frees every uploaded primitive and texture.
func (r *Renderer) Release() {
	for _, g := range r.primitives {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
	}
	for _, tex := range r.textures {
		gl.DeleteTextures(1, &tex)
	}
	r.primitives = make(map[*scene.Primitive]*gpuPrimitive)
	r.textures = make(map[image.Image]uint32)
}

func (r *Renderer) uploadPrimitive(p *scene.Primitive) *gpuPrimitive {
	g := &gpuPrimitive{indexCount: int32(len(p.Indices)), texture: r.whiteTex}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(p.Vertices)*4, unsafe.Pointer(&p.Vertices[0]), gl.STATIC_DRAW)

	stride := int32(scene.VertexStride * 4)
	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, unsafe.Pointer(&p.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if p.Material != nil && p.Material.Texture != nil {
		tex, ok := r.textures[p.Material.Texture]
		if !ok {
			b := p.Material.Texture.Bounds()
			tex = uploadTexture(p.Material.Texture, b.Dx(), b.Dy())
			r.textures[p.Material.Texture] = tex
		}
		g.texture = tex
	}
	return g
}

func uploadTexture(img image.Image, width, height int) uint32 {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return texID
}

func (r *Renderer) createLineBuffer() {
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, debug.BBoxWireframeVertexCount*3*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

// Draw clears the frame and draws every mesh below f.Root. The highlighted
// part is tinted and outlined.
func (r *Renderer) Draw(f Frame) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if f.Root == nil {
		return
	}
	viewProj := f.Projection.Mul(f.View)

	p := r.meshProgram
	p.Use()
	lights := r.config.Lights
	dir := lights.Direction()
	p.SetVec3("uLightDir", [3]float32{dir.X, dir.Y, dir.Z})
	p.SetVec3("uAmbient", lights.Ambient())
	p.SetVec3("uDiffuse", lights.Diffuse())
	p.SetInt("uTexture", 0)
	gl.ActiveTexture(gl.TEXTURE0)

	f.Root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		model := n.WorldMatrix()
		p.SetMat4("uModel", model)
		p.SetMat4("uMVP", viewProj.Mul(model))

		highlighted := n == f.Highlight
		if highlighted {
			p.SetVec3("uEmissive", [3]float32{0.0798, 0.2, 0.0798}) // 0x44aa44 at 0.3
		} else {
			p.SetVec3("uEmissive", [3]float32{})
		}

		for _, prim := range n.Mesh.Primitives {
			g := r.primitives[prim]
			if g == nil {
				continue
			}
			color := [4]float32{1, 1, 1, 1}
			if prim.Material != nil {
				color = prim.Material.BaseColor
			}
			if highlighted {
				color = r.config.Highlight
			}
			p.SetVec4("uBaseColor", color)
			gl.BindTexture(gl.TEXTURE_2D, g.texture)
			gl.BindVertexArray(g.vao)
			gl.DrawElementsWithOffset(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, 0)
		}
	})
	gl.BindVertexArray(0)

	if f.Highlight != nil {
		r.drawOutline(viewProj, f.Highlight.WorldBounds())
	}
}

func (r *Renderer) drawOutline(viewProj math.Mat4, box math.Box3) {
	if box.IsEmpty() {
		return
	}
	verts := debug.BoxWireframe(debug.PaddedBox(box, debug.DefaultBBoxPadding))

	r.lineProgram.Use()
	r.lineProgram.SetMat4("uViewProj", viewProj)
	r.lineProgram.SetVec4("uColor", r.config.Highlight)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, unsafe.Pointer(&verts[0]))
	gl.DrawArrays(gl.LINES, 0, debug.BBoxWireframeVertexCount)
	gl.BindVertexArray(0)
}
