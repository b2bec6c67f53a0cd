// Package formats provides loaders for the model and animation file
// formats the baker understands: glTF 2.0 (.gltf/.glb), Inter-Quake
// Model (.iqm) and Wavefront OBJ (.obj, static geometry only).
//
// All loaders produce pkg/model types with poses composed into model
// space, ready for skinning and keyframe capture.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftmark/vanim/pkg/model"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported model format")
	ErrModelNotFound     = errors.New("no loadable model found")
	ErrNoAnimationData   = errors.New("format carries no animation data")
)

// modelExtensions is the probe order used by LoadModel and
// LoadAnimations when the given path has no extension.
var modelExtensions = []string{".gltf", ".glb", ".iqm", ".obj"}

// LoadModel loads a model from path. When path carries an extension the
// matching loader is used directly; otherwise the known extensions are
// probed in order and the first candidate that yields at least one mesh
// wins.
func LoadModel(path string) (*model.Model, error) {
	if filepath.Ext(path) != "" {
		return LoadModelFile(path)
	}

	var lastErr error
	for _, ext := range modelExtensions {
		candidate := path + ext
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		m, err := LoadModelFile(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if len(m.Meshes) == 0 {
			lastErr = fmt.Errorf("%s: model has no meshes", candidate)
			continue
		}
		return m, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
}

// LoadModelFile loads a model from a single file, dispatching on its
// extension.
func LoadModelFile(path string) (*model.Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".iqm":
		return ParseIQMFile(path)
	case ".obj":
		return ParseOBJFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadAnimations loads the animation clips that accompany a model.
// sampleRate is the keyframe rate (frames per second) used when a
// format stores continuous curves instead of discrete frames; discrete
// formats such as IQM keep their native frames and ignore it.
//
// Extension handling mirrors LoadModel, except that formats without
// animation support are skipped during probing.
func LoadAnimations(path string, sampleRate float32) ([]model.Animation, error) {
	if filepath.Ext(path) != "" {
		return LoadAnimationsFile(path, sampleRate)
	}

	var lastErr error
	for _, ext := range modelExtensions {
		candidate := path + ext
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		anims, err := LoadAnimationsFile(candidate, sampleRate)
		if err != nil {
			if !errors.Is(err, ErrNoAnimationData) {
				lastErr = err
			}
			continue
		}
		return anims, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
}

// LoadAnimationsFile loads animation clips from a single file,
// dispatching on its extension.
func LoadAnimationsFile(path string, sampleRate float32) ([]model.Animation, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		return LoadGLTFAnimations(path, sampleRate)
	case ".iqm":
		return ParseIQMAnimationsFile(path)
	case ".obj":
		return nil, fmt.Errorf("%w: %q", ErrNoAnimationData, ext)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
