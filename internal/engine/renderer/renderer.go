// Package renderer draws uploaded meshes with a single unlit shader.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/engine/camera"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/gpu"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/model"
	"github.com/alwayssomewhattired/Vulkan/internal/engine/shader"
	"github.com/alwayssomewhattired/Vulkan/internal/logger"
	"github.com/alwayssomewhattired/Vulkan/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
}

// Renderer handles OpenGL rendering.
type Renderer struct {
	config  Config
	program uint32

	locModel int32
	locView  int32
	locProj  int32
}

// Mesh is a vertex array bound to a loader's vertex and index buffers.
// It does not own the buffers.
type Mesh struct {
	vao        uint32
	indexCount int32
	indexType  uint32
}

// Lines is a small owned line list, used for overlays.
type Lines struct {
	vao   uint32
	vbo   uint32
	count int32
}

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;

out vec3 vColor;
out vec2 vTexCoord;

void main() {
	gl_Position = uProj * uView * uModel * vec4(aPos, 1.0);
	vColor = aColor;
	vTexCoord = aTexCoord;
}
`

// The checker pattern stands in for the base color texture, which is
// never decoded.
const fragmentShaderSource = `
#version 410 core

in vec3 vColor;
in vec2 vTexCoord;
out vec4 FragColor;

void main() {
	vec2 cell = floor(vTexCoord * 8.0);
	float checker = mod(cell.x + cell.y, 2.0);
	FragColor = vec4(vColor * mix(0.6, 1.0, checker), 1.0);
}
`

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL is initialized!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.CompileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.locModel = shader.MustGetUniform(r.program, "uModel")
	r.locView = shader.MustGetUniform(r.program, "uView")
	r.locProj = shader.MustGetUniform(r.program, "uProj")

	logger.Debug("shader program created", zap.Uint32("program", r.program))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Debug("closing renderer")
	if r.program != 0 {
		gl.DeleteProgram(r.program)
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

// Aspect returns the current viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height <= 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// NewMesh builds a vertex array that reads Vertex records from vertex and
// indices from index.
func (r *Renderer) NewMesh(vertex, index gpu.Buffer, indexCount uint32, indexType gpu.IndexType) (*Mesh, error) {
	glType, err := indexGLType(indexType)
	if err != nil {
		return nil, err
	}

	m := &Mesh{indexCount: int32(indexCount), indexType: glType}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vertex))
	setupVertexAttributes()

	// The element binding is VAO state and must stay bound until the VAO
	// is unbound.
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(index))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	logger.Debug("mesh vertex array created",
		zap.Uint32("vao", m.vao),
		zap.Int32("indices", m.indexCount),
	)
	return m, nil
}

// Delete releases the vertex array. The buffers are left alone.
func (m *Mesh) Delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// Draw renders the mesh with the given model transform and camera.
func (r *Renderer) Draw(m *Mesh, modelMat math.Mat4, cam camera.Uniforms) {
	gl.UseProgram(r.program)
	shader.SetMat4(r.locModel, modelMat)
	shader.SetMat4(r.locView, cam.View)
	shader.SetMat4(r.locProj, cam.Proj)

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, m.indexType, 0)
	gl.BindVertexArray(0)
}

// NewLines uploads vertices as a line list.
func (r *Renderer) NewLines(vertices []model.Vertex) *Lines {
	l := &Lines{count: int32(len(vertices))}
	if len(vertices) == 0 {
		return l
	}

	gl.GenVertexArrays(1, &l.vao)
	gl.BindVertexArray(l.vao)

	gl.GenBuffers(1, &l.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*model.VertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	setupVertexAttributes()

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return l
}

// Delete releases the line list's vertex array and buffer.
func (l *Lines) Delete() {
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
		l.vao = 0
	}
	if l.vbo != 0 {
		gl.DeleteBuffers(1, &l.vbo)
		l.vbo = 0
	}
}

// DrawLines renders a line list with the given model transform and camera.
func (r *Renderer) DrawLines(l *Lines, modelMat math.Mat4, cam camera.Uniforms) {
	if l.count == 0 {
		return
	}
	gl.UseProgram(r.program)
	shader.SetMat4(r.locModel, modelMat)
	shader.SetMat4(r.locView, cam.View)
	shader.SetMat4(r.locProj, cam.Proj)

	gl.BindVertexArray(l.vao)
	gl.DrawArrays(gl.LINES, 0, l.count)
	gl.BindVertexArray(0)
}

// ReadPixels reads the current viewport of the bound read framebuffer as
// RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// setupVertexAttributes describes model.Vertex to the bound vertex array
// using the buffer bound to ARRAY_BUFFER.
func setupVertexAttributes() {
	binding := model.VertexBindingDescription()
	for _, attr := range model.VertexAttributeDescriptions() {
		gl.VertexAttribPointerWithOffset(attr.Location, int32(attr.Format.Components()),
			gl.FLOAT, false, int32(binding.Stride), uintptr(attr.Offset))
		gl.EnableVertexAttribArray(attr.Location)
	}
}

func indexGLType(t gpu.IndexType) (uint32, error) {
	switch t {
	case gpu.IndexUint16:
		return gl.UNSIGNED_SHORT, nil
	case gpu.IndexUint32:
		return gl.UNSIGNED_INT, nil
	default:
		return 0, fmt.Errorf("unsupported index type %v", t)
	}
}
