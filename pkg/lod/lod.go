// Package lod assigns distance-based level-of-detail tiers to model
// instances. Classification is a pure recomputation over the caller's
// instance slice each call; there is no hysteresis or damping between
// passes.
package lod

import "github.com/driftmark/vanim/pkg/math"

// MaxInstances is the instance cap used by the benchmark scenes.
const MaxInstances = 25

// Level is a detail tier. Lower values are closer and more detailed.
type Level int

const (
	// Near gets full detail and full animation speed.
	Near Level = iota
	// Mid gets a reduced animation rate.
	Mid
	// Far gets minimal animation.
	Far
	// Frozen instances keep rendering but stop animating. Classify never
	// assigns it; callers set it for out-of-frustum or off-screen cases.
	Frozen
	// Culled instances are skipped entirely.
	Culled
)

func (l Level) String() string {
	switch l {
	case Near:
		return "near"
	case Mid:
		return "mid"
	case Far:
		return "far"
	case Frozen:
		return "frozen"
	case Culled:
		return "culled"
	}
	return "unknown"
}

// Squared distance thresholds. Stored pre-squared so classification never
// takes a square root.
const (
	NearDistSq = 80.0 * 80.0
	MidDistSq  = 120.0 * 120.0
	FarDistSq  = 160.0 * 160.0
	CullDistSq = 200.0 * 200.0
)

// Per-tier playback speed multipliers. These are advisory knobs for callers
// that want to scale animation rates by tier; the playback clock itself
// never applies them.
const (
	NearSpeed   float32 = 1.0
	MidSpeed    float32 = 0.5
	FarSpeed    float32 = 0.25
	FrozenSpeed float32 = 0.0
)

// Instance is one rendered object. The slice is caller-owned; Classify
// rewrites Level, Visible, and DistanceSquared in place each pass.
// AnimationTime is a per-instance clock retained for callers that stagger
// their draws; the engine itself advances one shared clock.
type Instance struct {
	Position math.Vec3
	Rotation math.Vec3 // Euler angles, degrees
	Scale    float32

	AnimationIndex int
	AnimationTime  float32

	Level           Level
	Visible         bool
	DistanceSquared float32
}

// Classify recomputes every instance's tier from its squared distance to
// the viewer. Thresholds are evaluated far to near, first match wins; an
// instance exactly on a threshold lands in the nearer tier. Returns the
// visible and culled counts for this pass.
func Classify(instances []Instance, viewer math.Vec3) (visible, culled int) {
	for i := range instances {
		inst := &instances[i]
		inst.DistanceSquared = inst.Position.DistanceSquared(viewer)

		switch {
		case inst.DistanceSquared > CullDistSq:
			inst.Level = Culled
			inst.Visible = false
			culled++
		case inst.DistanceSquared > FarDistSq:
			inst.Level = Far
			inst.Visible = true
			visible++
		case inst.DistanceSquared > MidDistSq:
			inst.Level = Mid
			inst.Visible = true
			visible++
		default:
			inst.Level = Near
			inst.Visible = true
			visible++
		}
	}
	return visible, culled
}
