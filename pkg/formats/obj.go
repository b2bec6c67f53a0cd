package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/udhos/gwob"

	"github.com/driftmark/vanim/pkg/model"
)

// OBJ format errors.
var ErrInvalidOBJData = errors.New("invalid OBJ data")

// ParseOBJ parses a Wavefront OBJ file from raw bytes. OBJ is static
// geometry only: the result is a single unskinned mesh.
func ParseOBJ(data []byte) (*model.Model, error) {
	obj, err := gwob.NewObjFromBuf("model", data, &gwob.ObjParserOptions{})
	if err != nil {
		return nil, fmt.Errorf("parsing OBJ: %w", err)
	}
	return modelFromOBJ(obj)
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// modelFromOBJ de-interleaves gwob's combined vertex buffer into the
// flat per-attribute arrays the engine uses. Stride and offsets are in
// bytes on the gwob side.
func modelFromOBJ(obj *gwob.Obj) (*model.Model, error) {
	stride := obj.StrideSize / 4
	if stride < 3 {
		return nil, fmt.Errorf("%w: bad vertex stride %d", ErrInvalidOBJData, obj.StrideSize)
	}

	vertexCount := len(obj.Coord) / stride
	mesh := model.Mesh{
		VertexCount:   vertexCount,
		TriangleCount: len(obj.Indices) / 3,
		Vertices:      make([]float32, 0, vertexCount*3),
	}

	posOfs := obj.StrideOffsetPosition / 4
	for v := 0; v < vertexCount; v++ {
		base := v*stride + posOfs
		mesh.Vertices = append(mesh.Vertices, obj.Coord[base], obj.Coord[base+1], obj.Coord[base+2])
	}

	if obj.TextCoordFound {
		texOfs := obj.StrideOffsetTexture / 4
		mesh.Texcoords = make([]float32, 0, vertexCount*2)
		for v := 0; v < vertexCount; v++ {
			base := v*stride + texOfs
			mesh.Texcoords = append(mesh.Texcoords, obj.Coord[base], obj.Coord[base+1])
		}
	}

	if obj.NormCoordFound {
		normOfs := obj.StrideOffsetNormal / 4
		mesh.Normals = make([]float32, 0, vertexCount*3)
		for v := 0; v < vertexCount; v++ {
			base := v*stride + normOfs
			mesh.Normals = append(mesh.Normals, obj.Coord[base], obj.Coord[base+1], obj.Coord[base+2])
		}
	}

	mesh.Indices = make([]uint32, len(obj.Indices))
	for i, idx := range obj.Indices {
		if idx < 0 || idx >= vertexCount {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidOBJData, idx)
		}
		mesh.Indices[i] = uint32(idx)
	}

	return &model.Model{Meshes: []model.Mesh{mesh}}, nil
}
