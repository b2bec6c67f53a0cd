// Package model holds the skinned-mesh and skeletal-animation data consumed
// by the vertex-animation baking pipeline, plus the CPU skinning evaluator
// that poses a mesh at a given animation frame.
package model

import "github.com/driftmark/vanim/pkg/math"

// Mesh is a single drawable mesh. Vertex attributes are flat arrays, three
// floats per position/normal, two per texture coordinate. AnimVertices is
// the mutable deformed-position buffer written by AnimateModel; it is nil
// for meshes without skinning data.
type Mesh struct {
	VertexCount   int
	TriangleCount int

	Vertices  []float32
	Normals   []float32
	Texcoords []float32
	Indices   []uint32

	// Skinning attributes, four entries per vertex. Nil when the mesh is
	// not skinned.
	AnimVertices []float32
	BoneIDs      []uint8
	BoneWeights  []float32
}

// Skinned reports whether the mesh carries the attribute buffers required
// for skeletal deformation.
func (m *Mesh) Skinned() bool {
	return m.BoneIDs != nil && m.BoneWeights != nil && m.AnimVertices != nil
}

// BoneInfo describes one joint in the skeleton hierarchy.
type BoneInfo struct {
	Name   string
	Parent int // index into the bone list, -1 for the root
}

// Transform is a translation/rotation/scale triple. Bind poses and animation
// frame poses are stored as one Transform per bone.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// TransformIdentity returns the neutral transform.
func TransformIdentity() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Combine returns the child transform expressed in t's space. Used to walk
// local joint transforms up the hierarchy into model-space poses.
func (t Transform) Combine(child Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(child.Translation.RotateBy(t.Rotation)),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale:       child.Scale.Mul(t.Scale),
	}
}

// Model is a loaded model: its meshes plus the skeleton they are bound to.
// BindPose holds one model-space Transform per bone.
type Model struct {
	Meshes []Mesh

	BoneCount int
	Bones     []BoneInfo
	BindPose  []Transform
}

// Animation is one skeletal clip. FramePoses[frame][bone] is the model-space
// pose of each bone at each frame.
type Animation struct {
	Name       string
	BoneCount  int
	FrameCount int
	Bones      []BoneInfo
	FramePoses [][]Transform
}
