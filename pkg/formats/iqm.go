package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/driftmark/vanim/pkg/math"
	"github.com/driftmark/vanim/pkg/model"
)

// IQM format errors.
var (
	ErrInvalidIQMMagic       = errors.New("invalid IQM magic: expected 'INTERQUAKEMODEL'")
	ErrUnsupportedIQMVersion = errors.New("unsupported IQM version")
	ErrTruncatedIQMData      = errors.New("truncated IQM data")
	ErrInvalidIQMData        = errors.New("invalid IQM data")
)

const (
	iqmMagic      = "INTERQUAKEMODEL\x00"
	iqmVersion    = 2
	iqmHeaderSize = 124
)

// Vertex array types.
const (
	iqmPosition     = 0
	iqmTexcoord     = 1
	iqmNormal       = 2
	iqmTangent      = 3
	iqmBlendIndexes = 4
	iqmBlendWeights = 5
	iqmColor        = 6
)

// Vertex array component formats.
const (
	iqmUbyte = 1
	iqmFloat = 7
)

// iqmHeader is the fixed file header, minus the 16-byte magic.
type iqmHeader struct {
	Version         uint32
	FileSize        uint32
	Flags           uint32
	NumText         uint32
	OfsText         uint32
	NumMeshes       uint32
	OfsMeshes       uint32
	NumVertexArrays uint32
	NumVertexes     uint32
	OfsVertexArrays uint32
	NumTriangles    uint32
	OfsTriangles    uint32
	OfsAdjacency    uint32
	NumJoints       uint32
	OfsJoints       uint32
	NumPoses        uint32
	OfsPoses        uint32
	NumAnims        uint32
	OfsAnims        uint32
	NumFrames       uint32
	NumFrameChans   uint32
	OfsFrames       uint32
	OfsBounds       uint32
	NumComment      uint32
	OfsComment      uint32
	NumExtensions   uint32
	OfsExtensions   uint32
}

type iqmMesh struct {
	Name          uint32
	Material      uint32
	FirstVertex   uint32
	NumVertexes   uint32
	FirstTriangle uint32
	NumTriangles  uint32
}

type iqmVertexArray struct {
	Type   uint32
	Flags  uint32
	Format uint32
	Size   uint32
	Offset uint32
}

type iqmTriangle struct {
	Vertex [3]uint32
}

type iqmJoint struct {
	Name      uint32
	Parent    int32
	Translate [3]float32
	Rotate    [4]float32
	Scale     [3]float32
}

type iqmPose struct {
	Parent        int32
	ChannelMask   uint32
	ChannelOffset [10]float32
	ChannelScale  [10]float32
}

type iqmAnim struct {
	Name       uint32
	FirstFrame uint32
	NumFrames  uint32
	Framerate  float32
	Flags      uint32
}

// ParseIQM parses an IQM v2 model from raw bytes: meshes with their
// vertex attributes, plus the skeleton and model-space bind pose when
// the file carries joints.
func ParseIQM(data []byte) (*model.Model, error) {
	hdr, err := parseIQMHeader(data)
	if err != nil {
		return nil, err
	}

	text, err := iqmSection(data, hdr.OfsText, hdr.NumText, 1, "text")
	if err != nil {
		return nil, err
	}

	meshes, err := iqmRead[iqmMesh](data, hdr.OfsMeshes, hdr.NumMeshes, 24, "meshes")
	if err != nil {
		return nil, err
	}
	arrays, err := iqmRead[iqmVertexArray](data, hdr.OfsVertexArrays, hdr.NumVertexArrays, 20, "vertex arrays")
	if err != nil {
		return nil, err
	}
	tris, err := iqmRead[iqmTriangle](data, hdr.OfsTriangles, hdr.NumTriangles, 12, "triangles")
	if err != nil {
		return nil, err
	}

	attrs, err := readIQMVertexData(data, hdr.NumVertexes, arrays)
	if err != nil {
		return nil, err
	}

	m := &model.Model{Meshes: make([]model.Mesh, 0, len(meshes))}
	for i, im := range meshes {
		mesh, err := buildIQMMesh(im, attrs, tris, hdr.NumVertexes)
		if err != nil {
			return nil, fmt.Errorf("parsing mesh %d: %w", i, err)
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	if hdr.NumJoints > 0 {
		joints, err := iqmRead[iqmJoint](data, hdr.OfsJoints, hdr.NumJoints, 48, "joints")
		if err != nil {
			return nil, err
		}
		bones, bind, err := buildIQMSkeleton(joints, text)
		if err != nil {
			return nil, err
		}
		m.Bones = bones
		m.BindPose = bind
		m.BoneCount = len(bones)
	}

	return m, nil
}

// ParseIQMFile parses an IQM model from disk.
func ParseIQMFile(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IQM file: %w", err)
	}
	return ParseIQM(data)
}

// ParseIQMAnimations parses the animation clips of an IQM v2 file.
// Frame poses are decoded from the quantized channel stream and
// composed up the joint hierarchy into model space.
func ParseIQMAnimations(data []byte) ([]model.Animation, error) {
	hdr, err := parseIQMHeader(data)
	if err != nil {
		return nil, err
	}

	text, err := iqmSection(data, hdr.OfsText, hdr.NumText, 1, "text")
	if err != nil {
		return nil, err
	}

	anims, err := iqmRead[iqmAnim](data, hdr.OfsAnims, hdr.NumAnims, 20, "animations")
	if err != nil {
		return nil, err
	}
	poses, err := iqmRead[iqmPose](data, hdr.OfsPoses, hdr.NumPoses, 88, "poses")
	if err != nil {
		return nil, err
	}
	framedata, err := iqmRead[uint16](data, hdr.OfsFrames, hdr.NumFrames*hdr.NumFrameChans, 2, "frames")
	if err != nil {
		return nil, err
	}

	// Bone names and parents come from the joint table when it matches
	// the pose table, which it does in any sane exporter output.
	bones := make([]model.BoneInfo, len(poses))
	if hdr.NumJoints == hdr.NumPoses && hdr.NumJoints > 0 {
		joints, err := iqmRead[iqmJoint](data, hdr.OfsJoints, hdr.NumJoints, 48, "joints")
		if err != nil {
			return nil, err
		}
		for i, j := range joints {
			bones[i] = model.BoneInfo{Name: iqmText(text, j.Name), Parent: int(j.Parent)}
		}
	} else {
		for i, p := range poses {
			bones[i] = model.BoneInfo{Parent: int(p.Parent)}
		}
	}

	out := make([]model.Animation, 0, len(anims))
	for i, ia := range anims {
		anim, err := buildIQMAnimation(ia, poses, bones, framedata, hdr.NumFrameChans, text)
		if err != nil {
			return nil, fmt.Errorf("parsing animation %d: %w", i, err)
		}
		out = append(out, anim)
	}

	return out, nil
}

// ParseIQMAnimationsFile parses IQM animation clips from disk.
func ParseIQMAnimationsFile(path string) ([]model.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IQM file: %w", err)
	}
	return ParseIQMAnimations(data)
}

// parseIQMHeader validates the magic and version and decodes the fixed
// header that follows them.
func parseIQMHeader(data []byte) (iqmHeader, error) {
	var hdr iqmHeader

	if len(data) < iqmHeaderSize {
		return hdr, ErrTruncatedIQMData
	}
	if string(data[:16]) != iqmMagic {
		return hdr, ErrInvalidIQMMagic
	}

	r := bytes.NewReader(data[16:iqmHeaderSize])
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("%w: reading header", ErrTruncatedIQMData)
	}
	if hdr.Version != iqmVersion {
		return hdr, fmt.Errorf("%w: %d", ErrUnsupportedIQMVersion, hdr.Version)
	}

	return hdr, nil
}

// iqmSection bounds-checks and slices a file section of count elements
// of elemSize bytes.
func iqmSection(data []byte, ofs, count, elemSize uint32, what string) ([]byte, error) {
	end := uint64(ofs) + uint64(count)*uint64(elemSize)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s section out of bounds", ErrTruncatedIQMData, what)
	}
	return data[ofs:end], nil
}

// iqmRead bounds-checks a section and decodes it into a freshly
// allocated slice of count elements.
func iqmRead[T any](data []byte, ofs, count, elemSize uint32, what string) ([]T, error) {
	sec, err := iqmSection(data, ofs, count, elemSize, what)
	if err != nil {
		return nil, err
	}
	dst := make([]T, count)
	if err := binary.Read(bytes.NewReader(sec), binary.LittleEndian, dst); err != nil {
		return nil, fmt.Errorf("%w: reading %s", ErrTruncatedIQMData, what)
	}
	return dst, nil
}

// iqmAttributes holds the whole-file vertex streams before they are
// split per mesh.
type iqmAttributes struct {
	positions []float32
	normals   []float32
	texcoords []float32
	boneIDs   []uint8
	weights   []float32
}

// readIQMVertexData decodes the vertex streams the engine consumes and
// skips the rest (tangents, colors, custom streams).
func readIQMVertexData(data []byte, numVerts uint32, arrays []iqmVertexArray) (iqmAttributes, error) {
	var attrs iqmAttributes
	var err error

	for _, va := range arrays {
		switch va.Type {
		case iqmPosition:
			if va.Format != iqmFloat || va.Size != 3 {
				return attrs, fmt.Errorf("%w: position array must be 3 floats", ErrInvalidIQMData)
			}
			if attrs.positions, err = iqmRead[float32](data, va.Offset, numVerts*3, 4, "positions"); err != nil {
				return attrs, err
			}
		case iqmNormal:
			if va.Format != iqmFloat || va.Size != 3 {
				return attrs, fmt.Errorf("%w: normal array must be 3 floats", ErrInvalidIQMData)
			}
			if attrs.normals, err = iqmRead[float32](data, va.Offset, numVerts*3, 4, "normals"); err != nil {
				return attrs, err
			}
		case iqmTexcoord:
			if va.Format != iqmFloat || va.Size != 2 {
				return attrs, fmt.Errorf("%w: texcoord array must be 2 floats", ErrInvalidIQMData)
			}
			if attrs.texcoords, err = iqmRead[float32](data, va.Offset, numVerts*2, 4, "texcoords"); err != nil {
				return attrs, err
			}
		case iqmBlendIndexes:
			if va.Format != iqmUbyte || va.Size != 4 {
				return attrs, fmt.Errorf("%w: blend indexes must be 4 ubytes", ErrInvalidIQMData)
			}
			sec, err := iqmSection(data, va.Offset, numVerts*4, 1, "blend indexes")
			if err != nil {
				return attrs, err
			}
			attrs.boneIDs = append([]uint8(nil), sec...)
		case iqmBlendWeights:
			if va.Size != 4 {
				return attrs, fmt.Errorf("%w: blend weights must have 4 components", ErrInvalidIQMData)
			}
			switch va.Format {
			case iqmUbyte:
				sec, err := iqmSection(data, va.Offset, numVerts*4, 1, "blend weights")
				if err != nil {
					return attrs, err
				}
				attrs.weights = make([]float32, len(sec))
				for i, b := range sec {
					attrs.weights[i] = float32(b) / 255.0
				}
			case iqmFloat:
				if attrs.weights, err = iqmRead[float32](data, va.Offset, numVerts*4, 4, "blend weights"); err != nil {
					return attrs, err
				}
			default:
				return attrs, fmt.Errorf("%w: blend weights must be ubyte or float", ErrInvalidIQMData)
			}
		}
	}

	if attrs.positions == nil {
		return attrs, fmt.Errorf("%w: no position array", ErrInvalidIQMData)
	}

	return attrs, nil
}

// buildIQMMesh slices one mesh's vertex range out of the whole-file
// streams. Triangle indices are stored file-global and get rebased to
// the mesh; winding is flipped to counter-clockwise.
func buildIQMMesh(im iqmMesh, attrs iqmAttributes, tris []iqmTriangle, totalVerts uint32) (model.Mesh, error) {
	first, num := im.FirstVertex, im.NumVertexes
	if uint64(first)+uint64(num) > uint64(totalVerts) {
		return model.Mesh{}, fmt.Errorf("%w: vertex range out of bounds", ErrInvalidIQMData)
	}
	if uint64(im.FirstTriangle)+uint64(im.NumTriangles) > uint64(len(tris)) {
		return model.Mesh{}, fmt.Errorf("%w: triangle range out of bounds", ErrInvalidIQMData)
	}

	mesh := model.Mesh{
		VertexCount:   int(num),
		TriangleCount: int(im.NumTriangles),
		Vertices:      append([]float32(nil), attrs.positions[first*3:(first+num)*3]...),
	}
	if attrs.normals != nil {
		mesh.Normals = append([]float32(nil), attrs.normals[first*3:(first+num)*3]...)
	}
	if attrs.texcoords != nil {
		mesh.Texcoords = append([]float32(nil), attrs.texcoords[first*2:(first+num)*2]...)
	}

	mesh.Indices = make([]uint32, im.NumTriangles*3)
	for t := uint32(0); t < im.NumTriangles; t++ {
		tri := tris[im.FirstTriangle+t]
		for k := 0; k < 3; k++ {
			v := tri.Vertex[k]
			if v < first || v >= first+num {
				return model.Mesh{}, fmt.Errorf("%w: triangle index outside mesh", ErrInvalidIQMData)
			}
			mesh.Indices[t*3+uint32(2-k)] = v - first
		}
	}

	if attrs.boneIDs != nil && attrs.weights != nil {
		mesh.BoneIDs = append([]uint8(nil), attrs.boneIDs[first*4:(first+num)*4]...)
		mesh.BoneWeights = append([]float32(nil), attrs.weights[first*4:(first+num)*4]...)
		mesh.AnimVertices = append([]float32(nil), mesh.Vertices...)
	}

	return mesh, nil
}

// buildIQMSkeleton decodes the joint table into bone infos and the
// model-space bind pose. IQM stores local joint transforms with parents
// preceding children, so one forward pass composes the hierarchy.
func buildIQMSkeleton(joints []iqmJoint, text []byte) ([]model.BoneInfo, []model.Transform, error) {
	bones := make([]model.BoneInfo, len(joints))
	bind := make([]model.Transform, len(joints))

	for i, j := range joints {
		if int(j.Parent) >= i {
			return nil, nil, fmt.Errorf("%w: joint %d parent out of order", ErrInvalidIQMData, i)
		}
		bones[i] = model.BoneInfo{Name: iqmText(text, j.Name), Parent: int(j.Parent)}
		bind[i] = model.Transform{
			Translation: math.Vec3{X: j.Translate[0], Y: j.Translate[1], Z: j.Translate[2]},
			Rotation:    math.Quat{X: j.Rotate[0], Y: j.Rotate[1], Z: j.Rotate[2], W: j.Rotate[3]}.Normalize(),
			Scale:       math.Vec3{X: j.Scale[0], Y: j.Scale[1], Z: j.Scale[2]},
		}
		if p := bones[i].Parent; p >= 0 {
			bind[i] = bind[p].Combine(bind[i])
		}
	}

	return bones, bind, nil
}

// buildIQMAnimation decodes one clip's frames from the shared channel
// data stream.
func buildIQMAnimation(ia iqmAnim, poses []iqmPose, bones []model.BoneInfo, framedata []uint16, frameChans uint32, text []byte) (model.Animation, error) {
	anim := model.Animation{
		Name:       iqmText(text, ia.Name),
		BoneCount:  len(poses),
		FrameCount: int(ia.NumFrames),
		Bones:      append([]model.BoneInfo(nil), bones...),
		FramePoses: make([][]model.Transform, ia.NumFrames),
	}

	counter := uint64(ia.FirstFrame) * uint64(frameChans)

	for f := uint32(0); f < ia.NumFrames; f++ {
		fp := make([]model.Transform, len(poses))
		for j, p := range poses {
			if int(p.Parent) >= j {
				return anim, fmt.Errorf("%w: pose %d parent out of order", ErrInvalidIQMData, j)
			}

			var ch [10]float32
			for c := 0; c < 10; c++ {
				ch[c] = p.ChannelOffset[c]
				if p.ChannelMask&(1<<uint(c)) != 0 {
					if counter >= uint64(len(framedata)) {
						return anim, fmt.Errorf("%w: frame data exhausted", ErrTruncatedIQMData)
					}
					ch[c] += float32(framedata[counter]) * p.ChannelScale[c]
					counter++
				}
			}

			fp[j] = model.Transform{
				Translation: math.Vec3{X: ch[0], Y: ch[1], Z: ch[2]},
				Rotation:    math.Quat{X: ch[3], Y: ch[4], Z: ch[5], W: ch[6]}.Normalize(),
				Scale:       math.Vec3{X: ch[7], Y: ch[8], Z: ch[9]},
			}
			if parent := int(p.Parent); parent >= 0 {
				fp[j] = fp[parent].Combine(fp[j])
			}
		}
		anim.FramePoses[f] = fp
	}

	return anim, nil
}

// iqmText reads a null-terminated string from the text blob.
func iqmText(text []byte, ofs uint32) string {
	if uint64(ofs) >= uint64(len(text)) {
		return ""
	}
	s := text[ofs:]
	if end := bytes.IndexByte(s, 0); end >= 0 {
		s = s[:end]
	}
	return string(s)
}
