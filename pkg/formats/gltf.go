package formats

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/driftmark/vanim/pkg/math"
	"github.com/driftmark/vanim/pkg/model"
)

// glTF loader errors.
var (
	ErrNoGLTFMeshes     = errors.New("glTF document contains no meshes")
	ErrNoGLTFAnimations = errors.New("glTF document contains no animations")
	ErrInvalidGLTFData  = errors.New("invalid glTF data")
)

// LoadGLTF loads a glTF 2.0 model (.gltf or .glb). Every triangle
// primitive becomes one mesh; the first skin, when present, provides
// the skeleton and bind pose.
func LoadGLTF(path string) (*model.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF file: %w", err)
	}
	return modelFromGLTF(doc)
}

func modelFromGLTF(doc *gltf.Document) (*model.Model, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrNoGLTFMeshes
	}

	m := &model.Model{}
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			mesh, err := meshFromPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			m.Meshes = append(m.Meshes, mesh)
		}
	}

	if len(doc.Skins) > 0 {
		bones, bind, err := buildGLTFSkeleton(doc, doc.Skins[0])
		if err != nil {
			return nil, err
		}
		m.Bones = bones
		m.BindPose = bind
		m.BoneCount = len(bones)
	}

	return m, nil
}

func meshFromPrimitive(doc *gltf.Document, prim *gltf.Primitive) (model.Mesh, error) {
	var mesh model.Mesh

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return mesh, fmt.Errorf("%w: primitive has no POSITION attribute", ErrInvalidGLTFData)
	}
	acc, err := gltfAccessor(doc, posIdx, "POSITION")
	if err != nil {
		return mesh, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return mesh, fmt.Errorf("reading positions: %w", err)
	}
	mesh.VertexCount = len(positions)
	mesh.Vertices = make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2])
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		acc, err := gltfAccessor(doc, idx, "NORMAL")
		if err != nil {
			return mesh, err
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return mesh, fmt.Errorf("reading normals: %w", err)
		}
		mesh.Normals = make([]float32, 0, len(normals)*3)
		for _, n := range normals {
			mesh.Normals = append(mesh.Normals, n[0], n[1], n[2])
		}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acc, err := gltfAccessor(doc, idx, "TEXCOORD_0")
		if err != nil {
			return mesh, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return mesh, fmt.Errorf("reading texcoords: %w", err)
		}
		mesh.Texcoords = make([]float32, 0, len(uvs)*2)
		for _, uv := range uvs {
			mesh.Texcoords = append(mesh.Texcoords, uv[0], uv[1])
		}
	}

	if prim.Indices != nil {
		acc, err := gltfAccessor(doc, *prim.Indices, "indices")
		if err != nil {
			return mesh, err
		}
		mesh.Indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return mesh, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		mesh.Indices = make([]uint32, mesh.VertexCount)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	mesh.TriangleCount = len(mesh.Indices) / 3

	jointsIdx, hasJoints := prim.Attributes["JOINTS_0"]
	weightsIdx, hasWeights := prim.Attributes["WEIGHTS_0"]
	if hasJoints && hasWeights {
		jacc, err := gltfAccessor(doc, jointsIdx, "JOINTS_0")
		if err != nil {
			return mesh, err
		}
		joints, err := modeler.ReadJoints(doc, jacc, nil)
		if err != nil {
			return mesh, fmt.Errorf("reading joints: %w", err)
		}
		wacc, err := gltfAccessor(doc, weightsIdx, "WEIGHTS_0")
		if err != nil {
			return mesh, err
		}
		weights, err := modeler.ReadWeights(doc, wacc, nil)
		if err != nil {
			return mesh, fmt.Errorf("reading weights: %w", err)
		}

		mesh.BoneIDs = make([]uint8, 0, len(joints)*4)
		for _, j := range joints {
			mesh.BoneIDs = append(mesh.BoneIDs, uint8(j[0]), uint8(j[1]), uint8(j[2]), uint8(j[3]))
		}
		mesh.BoneWeights = make([]float32, 0, len(weights)*4)
		for _, w := range weights {
			mesh.BoneWeights = append(mesh.BoneWeights, w[0], w[1], w[2], w[3])
		}
		mesh.AnimVertices = append([]float32(nil), mesh.Vertices...)
	}

	return mesh, nil
}

// gltfAccessor bounds-checks an accessor index.
func gltfAccessor(doc *gltf.Document, idx uint32, what string) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: %s accessor %d out of range", ErrInvalidGLTFData, what, idx)
	}
	return doc.Accessors[idx], nil
}

// nodeParents maps every node to its parent node index, -1 for roots.
func nodeParents(doc *gltf.Document) []int32 {
	parents := make([]int32, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for ni, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(parents) {
				parents[c] = int32(ni)
			}
		}
	}
	return parents
}

// nodeLocalTransform reads a node's TRS. Matrix-form transforms are not
// consulted; joint nodes use TRS in practice and qmuntal/gltf fills the
// TRS defaults on decode.
func nodeLocalTransform(n *gltf.Node) model.Transform {
	return model.Transform{
		Translation: math.Vec3{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]},
		Rotation:    math.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}.Normalize(),
		Scale:       math.Vec3{X: n.Scale[0], Y: n.Scale[1], Z: n.Scale[2]},
	}
}

// chainTransform composes a node's local transform with its ancestors
// into model space. localOf supplies the local transform per node so
// the same walk serves both bind and animated poses.
func chainTransform(parents []int32, ni uint32, localOf func(uint32) model.Transform) (model.Transform, error) {
	chain := []uint32{ni}
	for {
		p := parents[chain[len(chain)-1]]
		if p < 0 {
			break
		}
		if len(chain) > len(parents) {
			return model.Transform{}, fmt.Errorf("%w: node hierarchy cycle", ErrInvalidGLTFData)
		}
		chain = append(chain, uint32(p))
	}

	t := localOf(chain[len(chain)-1])
	for i := len(chain) - 2; i >= 0; i-- {
		t = t.Combine(localOf(chain[i]))
	}
	return t, nil
}

// buildGLTFSkeleton derives bone infos and the model-space bind pose
// from a skin's joint nodes. The bind pose comes from the node
// hierarchy; inverse bind matrices are not consulted.
func buildGLTFSkeleton(doc *gltf.Document, skin *gltf.Skin) ([]model.BoneInfo, []model.Transform, error) {
	jointIndex := make(map[uint32]int, len(skin.Joints))
	for ji, n := range skin.Joints {
		if int(n) >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("%w: joint node %d out of range", ErrInvalidGLTFData, n)
		}
		jointIndex[n] = ji
	}

	parents := nodeParents(doc)
	localOf := func(ni uint32) model.Transform { return nodeLocalTransform(doc.Nodes[ni]) }

	bones := make([]model.BoneInfo, len(skin.Joints))
	bind := make([]model.Transform, len(skin.Joints))
	for ji, n := range skin.Joints {
		parent := -1
		if p := parents[n]; p >= 0 {
			if pj, ok := jointIndex[uint32(p)]; ok {
				parent = pj
			}
		}
		bones[ji] = model.BoneInfo{Name: doc.Nodes[n].Name, Parent: parent}

		t, err := chainTransform(parents, n, localOf)
		if err != nil {
			return nil, nil, err
		}
		bind[ji] = t
	}

	return bones, bind, nil
}

// vecTrack and quatTrack hold one channel's raw keyframes.
type vecTrack struct {
	times  []float32
	values []math.Vec3
}

type quatTrack struct {
	times  []float32
	values []math.Quat
}

// nodeChannels collects the TRS tracks targeting one node.
type nodeChannels struct {
	translation vecTrack
	rotation    quatTrack
	scale       vecTrack
}

// LoadGLTFAnimations loads every animation of a glTF file and resamples
// its curves into discrete frame poses at sampleRate frames per second,
// composed into model space for the first skin's joints.
func LoadGLTFAnimations(path string, sampleRate float32) ([]model.Animation, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF file: %w", err)
	}
	if len(doc.Animations) == 0 {
		return nil, ErrNoGLTFAnimations
	}
	if len(doc.Skins) == 0 {
		return nil, fmt.Errorf("%w: animations without a skin", ErrInvalidGLTFData)
	}

	skin := doc.Skins[0]
	bones, _, err := buildGLTFSkeleton(doc, skin)
	if err != nil {
		return nil, err
	}
	parents := nodeParents(doc)

	out := make([]model.Animation, 0, len(doc.Animations))
	for ai, ga := range doc.Animations {
		anim, err := resampleGLTFAnimation(doc, ga, skin, bones, parents, sampleRate, ai)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", ai, err)
		}
		out = append(out, anim)
	}

	return out, nil
}

func resampleGLTFAnimation(doc *gltf.Document, ga *gltf.Animation, skin *gltf.Skin, bones []model.BoneInfo, parents []int32, sampleRate float32, index int) (model.Animation, error) {
	chans, duration, err := collectGLTFChannels(doc, ga)
	if err != nil {
		return model.Animation{}, err
	}

	frameCount := int(duration*sampleRate) + 1
	if frameCount < 1 {
		frameCount = 1
	}

	name := ga.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	anim := model.Animation{
		Name:       name,
		BoneCount:  len(skin.Joints),
		FrameCount: frameCount,
		Bones:      append([]model.BoneInfo(nil), bones...),
		FramePoses: make([][]model.Transform, frameCount),
	}

	for f := 0; f < frameCount; f++ {
		t := float32(f) / sampleRate

		localOf := func(ni uint32) model.Transform {
			local := nodeLocalTransform(doc.Nodes[ni])
			if nc, ok := chans[ni]; ok {
				local.Translation = sampleVec(nc.translation, t, local.Translation)
				local.Rotation = sampleQuat(nc.rotation, t, local.Rotation)
				local.Scale = sampleVec(nc.scale, t, local.Scale)
			}
			return local
		}

		fp := make([]model.Transform, len(skin.Joints))
		for ji, n := range skin.Joints {
			pose, err := chainTransform(parents, n, localOf)
			if err != nil {
				return anim, err
			}
			fp[ji] = pose
		}
		anim.FramePoses[f] = fp
	}

	return anim, nil
}

// collectGLTFChannels decodes every TRS channel of an animation into
// per-node tracks and returns the clip duration.
func collectGLTFChannels(doc *gltf.Document, ga *gltf.Animation) (map[uint32]*nodeChannels, float32, error) {
	chans := make(map[uint32]*nodeChannels)
	var duration float32

	for ci, ch := range ga.Channels {
		if ch.Target.Node == nil || ch.Sampler == nil {
			continue
		}
		node := *ch.Target.Node
		if int(node) >= len(doc.Nodes) {
			return nil, 0, fmt.Errorf("%w: channel %d targets node %d out of range", ErrInvalidGLTFData, ci, node)
		}
		if int(*ch.Sampler) >= len(ga.Samplers) {
			return nil, 0, fmt.Errorf("%w: channel %d sampler out of range", ErrInvalidGLTFData, ci)
		}
		smp := ga.Samplers[*ch.Sampler]

		times, err := readGLTFScalars(doc, *smp.Input)
		if err != nil {
			return nil, 0, fmt.Errorf("channel %d input: %w", ci, err)
		}
		if len(times) == 0 {
			continue
		}
		for _, tt := range times {
			if tt > duration {
				duration = tt
			}
		}

		nc := chans[node]
		if nc == nil {
			nc = &nodeChannels{}
			chans[node] = nc
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			vals, err := readGLTFVec3s(doc, *smp.Output)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d output: %w", ci, err)
			}
			if len(vals) < len(times) {
				return nil, 0, fmt.Errorf("%w: channel %d output shorter than input", ErrInvalidGLTFData, ci)
			}
			tr := vecTrack{times: times, values: vals[:len(times)]}
			if ch.Target.Path == gltf.TRSTranslation {
				nc.translation = tr
			} else {
				nc.scale = tr
			}
		case gltf.TRSRotation:
			vals, err := readGLTFQuats(doc, *smp.Output)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d output: %w", ci, err)
			}
			if len(vals) < len(times) {
				return nil, 0, fmt.Errorf("%w: channel %d output shorter than input", ErrInvalidGLTFData, ci)
			}
			nc.rotation = quatTrack{times: times, values: vals[:len(times)]}
		default:
			// Morph target weights are not supported.
		}
	}

	return chans, duration, nil
}

func readGLTFScalars(doc *gltf.Document, idx uint32) ([]float32, error) {
	acc, err := gltfAccessor(doc, idx, "sampler")
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading accessor: %w", err)
	}
	vals, ok := raw.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: accessor %d is not scalar float", ErrInvalidGLTFData, idx)
	}
	return vals, nil
}

func readGLTFVec3s(doc *gltf.Document, idx uint32) ([]math.Vec3, error) {
	acc, err := gltfAccessor(doc, idx, "sampler")
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading accessor: %w", err)
	}
	vals, ok := raw.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("%w: accessor %d is not vec3 float", ErrInvalidGLTFData, idx)
	}
	out := make([]math.Vec3, len(vals))
	for i, v := range vals {
		out[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	return out, nil
}

func readGLTFQuats(doc *gltf.Document, idx uint32) ([]math.Quat, error) {
	acc, err := gltfAccessor(doc, idx, "sampler")
	if err != nil {
		return nil, err
	}
	raw, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading accessor: %w", err)
	}
	vals, ok := raw.([][4]float32)
	if !ok {
		return nil, fmt.Errorf("%w: accessor %d is not vec4 float", ErrInvalidGLTFData, idx)
	}
	out := make([]math.Quat, len(vals))
	for i, v := range vals {
		out[i] = math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize()
	}
	return out, nil
}

// sampleVec evaluates a track at time t with linear interpolation,
// clamping outside the keyed range. Empty tracks yield the fallback.
func sampleVec(tr vecTrack, t float32, fallback math.Vec3) math.Vec3 {
	n := len(tr.times)
	if n == 0 {
		return fallback
	}
	if t <= tr.times[0] {
		return tr.values[0]
	}
	if t >= tr.times[n-1] {
		return tr.values[n-1]
	}
	for i := 0; i < n-1; i++ {
		if t < tr.times[i+1] {
			span := tr.times[i+1] - tr.times[i]
			if span <= 0 {
				return tr.values[i]
			}
			return tr.values[i].Lerp(tr.values[i+1], (t-tr.times[i])/span)
		}
	}
	return tr.values[n-1]
}

// sampleQuat is sampleVec for rotation tracks, using spherical
// interpolation.
func sampleQuat(tr quatTrack, t float32, fallback math.Quat) math.Quat {
	n := len(tr.times)
	if n == 0 {
		return fallback
	}
	if t <= tr.times[0] {
		return tr.values[0]
	}
	if t >= tr.times[n-1] {
		return tr.values[n-1]
	}
	for i := 0; i < n-1; i++ {
		if t < tr.times[i+1] {
			span := tr.times[i+1] - tr.times[i]
			if span <= 0 {
				return tr.values[i]
			}
			return tr.values[i].Slerp(tr.values[i+1], (t-tr.times[i])/span)
		}
	}
	return tr.values[n-1]
}
