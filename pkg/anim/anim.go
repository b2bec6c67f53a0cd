// Package anim implements a vertex-animation baking and playback engine.
// Skeletal clips are baked into per-frame vertex snapshots at a reduced
// sample rate, then played back by linearly interpolating between bracketing
// keyframes. The data model is fixed-capacity throughout: capture past a
// capacity limit silently drops data rather than growing or failing, which
// is the intended degradation mode for memory-constrained targets.
package anim

import (
	"errors"

	"go.uber.org/zap"

	"github.com/driftmark/vanim/pkg/model"
)

// Version is the engine version string.
const Version = "1.0.0"

const (
	// MaxKeyframes is the keyframe capacity per animation.
	MaxKeyframes = 20
	// MaxAnimations is the animation table capacity per system.
	MaxAnimations = 8
	// MaxNameLength bounds animation names.
	MaxNameLength = 32

	// SampleFPS is the assumed source frame rate. Durations and keyframe
	// timestamps are derived from it, not from clip metadata.
	SampleFPS = 20.0
)

// ErrNotInitialized is returned by operations on a zero-value or shut-down
// System.
var ErrNotInitialized = errors.New("animation system not initialized")

// Canonical clip names, assigned by bake order.
var animationNames = [MaxAnimations]string{
	"Survey", "Walk", "Run", "Jump", "Idle", "Attack", "Death", "Custom",
}

// AnimationNameByIndex returns the canonical name for a bake slot.
// Out-of-range slots get the placeholder name.
func AnimationNameByIndex(i int) string {
	if i >= 0 && i < MaxAnimations {
		return animationNames[i]
	}
	return "Unknown"
}

// Keyframe is one captured vertex snapshot: deformed positions for every
// vertex at a single sampled time. Vertices are immutable after capture.
type Keyframe struct {
	Vertices    []float32 // flat positions, 3 per vertex
	VertexCount int
	Timestamp   float32 // seconds
}

// Animation is one baked clip: an ordered run of keyframes with strictly
// increasing timestamps, a total duration, and a looping flag.
type Animation struct {
	Name          string
	Keyframes     [MaxKeyframes]Keyframe
	KeyframeCount int
	Duration      float32
	Looping       bool
}

// Capture appends one keyframe, copying the first vertexCount*3 floats of
// vertices. Past capacity it silently does nothing; callers must not assume
// truncation is signaled.
func (a *Animation) Capture(timestamp float32, vertices []float32, vertexCount int) {
	if a.KeyframeCount >= MaxKeyframes {
		return
	}
	kf := &a.Keyframes[a.KeyframeCount]
	kf.Vertices = make([]float32, vertexCount*3)
	copy(kf.Vertices, vertices[:vertexCount*3])
	kf.VertexCount = vertexCount
	kf.Timestamp = timestamp
	a.KeyframeCount++
}

// System holds one animation table, one playback clock, and one shared
// interpolation scratch buffer. All methods expect single-threaded use from
// a frame-update loop; the scratch buffer holds exactly one live result at
// a time.
type System struct {
	animations     [MaxAnimations]Animation
	animationCount int

	current int // active animation index, -1 = none
	time    float32
	paused  bool

	buffer      []float32 // interpolation output, vertexCount*3
	vertexCount int

	initialized bool

	poser func(*model.Model, *model.Animation, int)
	log   *zap.Logger

	updates int
	avgFPS  float32
}

// Config carries optional collaborators for a System.
type Config struct {
	// Logger receives bake and playback diagnostics. Nil means silent.
	Logger *zap.Logger
	// Poser poses a model at one frame of a clip during baking.
	// Defaults to model.AnimateModel.
	Poser func(*model.Model, *model.Animation, int)
}

// New returns a ready System with no baked animations.
func New() *System {
	return NewWithConfig(Config{})
}

// NewWithConfig returns a ready System using the given collaborators.
func NewWithConfig(cfg Config) *System {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	poser := cfg.Poser
	if poser == nil {
		poser = model.AnimateModel
	}
	return &System{
		current:     -1,
		initialized: true,
		poser:       poser,
		log:         log,
	}
}

// Shutdown releases all keyframe and scratch buffers and resets the system
// to empty. The System must not be used again except through a new
// constructor call.
func (s *System) Shutdown() {
	if !s.initialized {
		return
	}
	*s = System{current: -1}
}

// AnimationCount returns the number of baked animations.
func (s *System) AnimationCount() int { return s.animationCount }

// CurrentAnimation returns the active animation index, -1 if none.
func (s *System) CurrentAnimation() int { return s.current }

// CurrentTime returns the playback clock in seconds.
func (s *System) CurrentTime() float32 { return s.time }

// VertexCount returns the per-keyframe vertex count set by baking.
func (s *System) VertexCount() int { return s.vertexCount }

// Animation returns the baked animation at index i, nil if out of range.
func (s *System) Animation(i int) *Animation {
	if i < 0 || i >= s.animationCount {
		return nil
	}
	return &s.animations[i]
}

// AnimationName returns the name of the baked animation at index i,
// "" if out of range.
func (s *System) AnimationName(i int) string {
	if a := s.Animation(i); a != nil {
		return a.Name
	}
	return ""
}
