// Package renderer draws animated model instances with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/driftmark/vanim/internal/engine/shader"
	"github.com/driftmark/vanim/internal/logger"
	"github.com/driftmark/vanim/pkg/math"
	"github.com/driftmark/vanim/pkg/model"
)

const vertexShaderSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;

out vec3 vNormal;

void main() {
	gl_Position = uProj * uView * uModel * vec4(aPos, 1.0);
	vNormal = mat3(uModel) * aNormal;
}
`

const fragmentShaderSrc = `
#version 410 core

in vec3 vNormal;

uniform vec3 uTint;

out vec4 FragColor;

void main() {
	vec3 lightDir = normalize(vec3(0.4, 0.8, 0.45));
	float len = length(vNormal);
	float diff = len > 0.0 ? max(dot(vNormal / len, lightDir), 0.0) : 0.0;
	float light = 0.35 + 0.65 * diff;
	FragColor = vec4(uTint * light, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Tint is an RGB multiplier applied per draw call.
type Tint [3]float32

// Detail tier tints, white down to dark gray.
var (
	TintWhite     = Tint{1.0, 1.0, 1.0}
	TintLightGray = Tint{0.78, 0.78, 0.78}
	TintGray      = Tint{0.51, 0.51, 0.51}
	TintDarkGray  = Tint{0.31, 0.31, 0.31}
)

type glMesh struct {
	vao         uint32
	posVBO      uint32
	normVBO     uint32
	ebo         uint32
	indexCount  int32
	vertexCount int
	mode        uint32
}

// Renderer owns the GL objects for drawing one model many times.
type Renderer struct {
	config  Config
	program uint32

	uModel int32
	uView  int32
	uProj  int32
	uTint  int32

	meshes []glMesh
	grid   *glMesh
}

// New creates a renderer. Must be called after the GL context exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.4, 0.75, 1.0, 1.0) // sky blue
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.uModel = shader.MustGetUniform(r.program, "uModel")
	r.uView = shader.MustGetUniform(r.program, "uView")
	r.uProj = shader.MustGetUniform(r.program, "uProj")
	r.uTint = shader.MustGetUniform(r.program, "uTint")

	return r, nil
}

// Close releases all GL objects.
func (r *Renderer) Close() {
	for i := range r.meshes {
		deleteMesh(&r.meshes[i])
	}
	r.meshes = nil
	if r.grid != nil {
		deleteMesh(r.grid)
		r.grid = nil
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

func deleteMesh(m *glMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.posVBO != 0 {
		gl.DeleteBuffers(1, &m.posVBO)
	}
	if m.normVBO != 0 {
		gl.DeleteBuffers(1, &m.normVBO)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// Resize updates the viewport after a window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// UploadModel creates GL buffers for every mesh of the model. Positions
// go into a dynamic buffer so animation playback can rewrite them each
// frame.
func (r *Renderer) UploadModel(m *model.Model) error {
	if len(m.Meshes) == 0 {
		return fmt.Errorf("model has no meshes")
	}
	for i := range m.Meshes {
		gm, err := uploadMesh(&m.Meshes[i])
		if err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		r.meshes = append(r.meshes, gm)
	}
	logger.Debug("model uploaded", zap.Int("meshes", len(r.meshes)))
	return nil
}

func uploadMesh(mesh *model.Mesh) (glMesh, error) {
	if len(mesh.Vertices) == 0 {
		return glMesh{}, fmt.Errorf("mesh has no vertices")
	}
	if len(mesh.Indices) == 0 {
		return glMesh{}, fmt.Errorf("mesh has no indices")
	}

	normals := mesh.Normals
	if len(normals) < len(mesh.Vertices) {
		normals = averagedNormals(mesh.Vertices, mesh.Indices)
	}

	gm := glMesh{
		indexCount:  int32(len(mesh.Indices)),
		vertexCount: mesh.VertexCount,
		mode:        gl.TRIANGLES,
	}

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	// Positions are re-uploaded while animating.
	gl.GenBuffers(1, &gm.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, unsafe.Pointer(&mesh.Vertices[0]), gl.DYNAMIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &gm.normVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.normVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(normals)*4, unsafe.Pointer(&normals[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	return gm, nil
}

// UpdateMeshVertices rewrites the position buffer of one mesh with
// freshly interpolated vertices.
func (r *Renderer) UpdateMeshVertices(index int, verts []float32) {
	if index < 0 || index >= len(r.meshes) || len(verts) == 0 {
		return
	}
	m := &r.meshes[index]
	n := len(verts)
	if limit := m.vertexCount * 3; n > limit {
		n = limit
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.posVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*4, unsafe.Pointer(&verts[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Begin clears the frame and sets the camera matrices for this frame.
func (r *Renderer) Begin(view, proj math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.uProj, 1, false, proj.Ptr())
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// DrawModel draws every uploaded mesh with the given transform and tint.
func (r *Renderer) DrawModel(modelMat math.Mat4, tint Tint) {
	gl.UniformMatrix4fv(r.uModel, 1, false, modelMat.Ptr())
	gl.Uniform3f(r.uTint, tint[0], tint[1], tint[2])
	for i := range r.meshes {
		m := &r.meshes[i]
		gl.BindVertexArray(m.vao)
		gl.DrawElements(m.mode, m.indexCount, gl.UNSIGNED_INT, nil)
	}
}

// CreateGrid builds a ground grid of slices*slices cells centered at the
// origin, drawn as lines.
func (r *Renderer) CreateGrid(slices int, spacing float32) {
	half := float32(slices) / 2 * spacing

	var verts []float32
	for i := 0; i <= slices; i++ {
		p := -half + float32(i)*spacing
		verts = append(verts,
			p, 0, -half, p, 0, half, // line along Z
			-half, 0, p, half, 0, p, // line along X
		)
	}
	indices := make([]uint32, len(verts)/3)
	for i := range indices {
		indices[i] = uint32(i)
	}
	// Zero normals leave grid lines at the ambient light floor.
	normals := make([]float32, len(verts))

	gm := glMesh{
		indexCount:  int32(len(indices)),
		vertexCount: len(verts) / 3,
		mode:        gl.LINES,
	}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &gm.normVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.normVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(normals)*4, unsafe.Pointer(&normals[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	r.grid = &gm
}

// DrawGrid draws the ground grid, if one was created.
func (r *Renderer) DrawGrid() {
	if r.grid == nil {
		return
	}
	identity := math.Identity()
	gl.UniformMatrix4fv(r.uModel, 1, false, identity.Ptr())
	gl.Uniform3f(r.uTint, 0.6, 0.6, 0.6)
	gl.BindVertexArray(r.grid.vao)
	gl.DrawElements(r.grid.mode, r.grid.indexCount, gl.UNSIGNED_INT, nil)
}

// ReadPixels reads back the current framebuffer as tightly packed RGBA,
// bottom row first.
func (r *Renderer) ReadPixels(width, height int) []byte {
	buf := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&buf[0]))
	return buf
}

// averagedNormals builds per-vertex normals from face normals for meshes
// that come in without any.
func averagedNormals(verts []float32, indices []uint32) []float32 {
	normals := make([]float32, len(verts))
	at := func(i uint32) math.Vec3 {
		return math.Vec3{X: verts[i*3], Y: verts[i*3+1], Z: verts[i*3+2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := at(i0)
		n := at(i1).Sub(a).Cross(at(i2).Sub(a))
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3] += n.X
			normals[idx*3+1] += n.Y
			normals[idx*3+2] += n.Z
		}
	}
	for v := 0; v+2 < len(normals); v += 3 {
		n := math.Vec3{X: normals[v], Y: normals[v+1], Z: normals[v+2]}
		if n.Length() > 0 {
			n = n.Normalize()
		}
		normals[v], normals[v+1], normals[v+2] = n.X, n.Y, n.Z
	}
	return normals
}
