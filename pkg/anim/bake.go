package anim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/driftmark/vanim/pkg/model"
)

// ErrIncompatibleModel is returned when a model/animation pair cannot be
// baked. The wrapped message names the specific precondition that failed.
var ErrIncompatibleModel = errors.New("model incompatible with vertex baking")

// checkCompatibility verifies that the model carries a skeleton with
// skinning data and that the first clip matches it. Runs before any state
// mutation so a failed bake leaves the system untouched.
func checkCompatibility(m *model.Model, anims []model.Animation) error {
	if len(m.Meshes) == 0 {
		return fmt.Errorf("%w: model has no meshes", ErrIncompatibleModel)
	}
	if len(anims) == 0 {
		return fmt.Errorf("%w: no animations to bake", ErrIncompatibleModel)
	}
	if m.BoneCount <= 0 {
		return fmt.Errorf("%w: model has no bones", ErrIncompatibleModel)
	}
	if m.Bones == nil || m.BindPose == nil {
		return fmt.Errorf("%w: model missing bone hierarchy", ErrIncompatibleModel)
	}

	first := &anims[0]
	if first.BoneCount != m.BoneCount {
		return fmt.Errorf("%w: bone count mismatch (model %d, clip %d)",
			ErrIncompatibleModel, m.BoneCount, first.BoneCount)
	}
	if first.Bones == nil || first.FramePoses == nil {
		return fmt.Errorf("%w: clip missing pose data", ErrIncompatibleModel)
	}

	for i := range m.Meshes {
		if m.Meshes[i].Skinned() {
			return nil
		}
	}
	return fmt.Errorf("%w: no mesh carries skinning data", ErrIncompatibleModel)
}

// Bake samples each skeletal clip into vertex keyframes and populates the
// animation table. Clips beyond the table capacity are dropped. Long clips
// (more than 40 frames) sample every 8th frame, short ones every 4th, to
// bound keyframe memory. On success the scratch buffer is allocated and the
// first animation becomes active at time zero.
func (s *System) Bake(m *model.Model, anims []model.Animation) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if err := checkCompatibility(m, anims); err != nil {
		return err
	}

	count := len(anims)
	if count > MaxAnimations {
		count = MaxAnimations
	}

	s.animationCount = count
	s.vertexCount = m.Meshes[0].VertexCount

	for a := 0; a < count; a++ {
		clip := &anims[a]
		baked := &s.animations[a]

		baked.Name = AnimationNameByIndex(a)
		baked.KeyframeCount = 0
		baked.Duration = float32(clip.FrameCount) / SampleFPS
		baked.Looping = true

		stride := 4
		if clip.FrameCount > 40 {
			stride = 8
		}

		for frame := 0; frame < clip.FrameCount; frame += stride {
			s.poser(m, clip, frame)
			if m.Meshes[0].AnimVertices != nil {
				baked.Capture(float32(frame)/SampleFPS, m.Meshes[0].AnimVertices, s.vertexCount)
			}
		}

		s.log.Info("baked animation",
			zap.Int("index", a),
			zap.String("name", baked.Name),
			zap.Int("frames", clip.FrameCount),
			zap.Int("keyframes", baked.KeyframeCount),
			zap.Float32("duration", baked.Duration))
	}

	s.buffer = make([]float32, s.vertexCount*3)
	s.current = 0
	s.time = 0

	s.log.Info("vertex animation baking complete",
		zap.Int("animations", s.animationCount),
		zap.Int("vertices", s.vertexCount),
		zap.Int("memory_kb", s.MemoryUsageKB()))
	return nil
}
