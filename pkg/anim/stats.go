package anim

import (
	"fmt"
	"strings"
)

// Stats is a point-in-time diagnostic snapshot. Counts come from the last
// LOD classification pass; the update counter and FPS estimate come from
// the playback clock.
type Stats struct {
	VisibleInstances int
	CulledInstances  int
	AnimationUpdates int
	AverageFPS       float32
	MemoryUsageKB    int
}

// MemoryUsageKB sums the bytes held by every captured keyframe
// (vertexCount * 3 floats each) plus the scratch buffer, truncated to
// whole kilobytes.
func (s *System) MemoryUsageKB() int {
	total := 0
	for a := 0; a < s.animationCount; a++ {
		for k := 0; k < s.animations[a].KeyframeCount; k++ {
			kf := &s.animations[a].Keyframes[k]
			if kf.Vertices != nil {
				total += kf.VertexCount * 3 * 4
			}
		}
	}
	if s.buffer != nil {
		total += s.vertexCount * 3 * 4
	}
	return total / 1024
}

// Stats combines the given LOD pass counts with playback counters into a
// snapshot. The update counter resets on every call, so AnimationUpdates
// reads as "updates since the last snapshot".
func (s *System) Stats(visible, culled int) Stats {
	st := Stats{
		VisibleInstances: visible,
		CulledInstances:  culled,
		AnimationUpdates: s.updates,
		AverageFPS:       s.avgFPS,
		MemoryUsageKB:    s.MemoryUsageKB(),
	}
	s.updates = 0
	return st
}

// DebugString renders the animation table and playback state for debug
// overlays and logs.
func (s *System) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vanim v%s\n", Version)
	fmt.Fprintf(&b, "animations: %d  vertices: %d  memory: %d KB\n",
		s.animationCount, s.vertexCount, s.MemoryUsageKB())
	for i := 0; i < s.animationCount; i++ {
		a := &s.animations[i]
		marker := " "
		if i == s.current {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s [%d] %-8s %2d keyframes  %.2fs\n",
			marker, i, a.Name, a.KeyframeCount, a.Duration)
	}
	fmt.Fprintf(&b, "time: %.2fs  paused: %v", s.time, s.paused)
	return b.String()
}
