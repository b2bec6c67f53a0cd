package anim

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var (
	// ErrInvalidAnimation is returned for an out-of-range animation index.
	ErrInvalidAnimation = errors.New("animation index out of range")
	// ErrAnimationNotFound is returned when no animation has the given name.
	ErrAnimationNotFound = errors.New("animation not found")
)

// Update advances the playback clock by dt seconds and rewrites the scratch
// buffer with interpolated vertices. When the clock reaches the clip
// duration it hard-resets to zero, dropping any excess time; one call wraps
// at most once regardless of dt. No-op when the system is uninitialized,
// paused, has no active animation, fewer than two keyframes, or no scratch
// buffer.
func (s *System) Update(dt float32) {
	if !s.initialized || s.paused {
		return
	}
	if s.current < 0 || s.current >= s.animationCount {
		return
	}
	a := &s.animations[s.current]
	if a.KeyframeCount < 2 || s.buffer == nil {
		return
	}

	s.time += dt
	if s.time >= a.Duration {
		s.time = 0
	}

	cur, next := 0, 1
	for i := 0; i < a.KeyframeCount-1; i++ {
		if s.time >= a.Keyframes[i].Timestamp && s.time < a.Keyframes[i+1].Timestamp {
			cur, next = i, i+1
			break
		}
	}

	// Past the last timestamp: the final segment wraps back to keyframe 0,
	// interpolated over the remaining span up to the duration.
	if s.time >= a.Keyframes[a.KeyframeCount-1].Timestamp {
		cur = a.KeyframeCount - 1
		next = 0
	}

	t1 := a.Keyframes[cur].Timestamp
	var frac float32
	if next == 0 {
		if span := a.Duration - t1; span > 0 {
			frac = (s.time - t1) / span
		}
	} else {
		if span := a.Keyframes[next].Timestamp - t1; span > 0 {
			frac = (s.time - t1) / span
		}
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}

	lerpVertices(s.buffer, a.Keyframes[cur].Vertices, a.Keyframes[next].Vertices, frac)

	s.updates++
	if dt > 0 {
		fps := 1 / dt
		if s.avgFPS == 0 {
			s.avgFPS = fps
		} else {
			s.avgFPS += (fps - s.avgFPS) * fpsSmoothing
		}
	}
}

const fpsSmoothing = 0.1

func lerpVertices(out, from, to []float32, t float32) {
	for i := range out {
		out[i] = from[i] + (to[i]-from[i])*t
	}
}

// InterpolatedVertices returns the shared scratch buffer holding the latest
// interpolation result, nil before a successful bake. The next Update call
// overwrites it; callers must consume it first.
func (s *System) InterpolatedVertices() []float32 {
	return s.buffer
}

// SetAnimation makes the animation at index active and resets the clock.
func (s *System) SetAnimation(index int) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if index < 0 || index >= s.animationCount {
		return fmt.Errorf("%w: %d", ErrInvalidAnimation, index)
	}
	s.current = index
	s.time = 0
	return nil
}

// SetAnimationByName activates the animation with exactly this name. On
// failure the active animation and clock are left unchanged.
func (s *System) SetAnimationByName(name string) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	for i := 0; i < s.animationCount; i++ {
		if s.animations[i].Name == name {
			return s.SetAnimation(i)
		}
	}
	return fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
}

// SetAnimationTime wraps t into [0, duration) with true modulo semantics:
// negative inputs land measured back from the end. This is intentionally
// different from Update's hard reset on overflow.
func (s *System) SetAnimationTime(t float32) {
	if s.current < 0 || s.current >= s.animationCount {
		return
	}
	d := s.animations[s.current].Duration
	if d <= 0 {
		s.time = 0
		return
	}
	s.time = math32.Mod(t, d)
	if s.time < 0 {
		s.time += d
	}
}

// SetPaused freezes or resumes the playback clock. While paused, Update
// leaves both the clock and the scratch buffer untouched.
func (s *System) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether the playback clock is frozen.
func (s *System) Paused() bool { return s.paused }
