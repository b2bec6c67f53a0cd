package lod

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/driftmark/vanim/pkg/math"
)

func at(x float32) Instance {
	return Instance{Position: math.Vec3{X: x}}
}

func TestClassifyTiers(t *testing.T) {
	tests := []struct {
		distance    float32
		wantLevel   Level
		wantVisible bool
	}{
		{0, Near, true},
		{50, Near, true},
		{100, Near, true},
		{130, Mid, true},
		{170, Far, true},
		{250, Culled, false},
	}
	for _, tt := range tests {
		instances := []Instance{at(tt.distance)}
		Classify(instances, math.Vec3{})

		if got := instances[0].Level; got != tt.wantLevel {
			t.Errorf("distance %v: Level = %v, want %v", tt.distance, got, tt.wantLevel)
		}
		if got := instances[0].Visible; got != tt.wantVisible {
			t.Errorf("distance %v: Visible = %v, want %v", tt.distance, got, tt.wantVisible)
		}
	}
}

func TestClassifyExactBoundaries(t *testing.T) {
	// Comparisons are strictly greater-than, so a distance exactly on a
	// threshold stays in the nearer tier.
	tests := []struct {
		distance float32
		want     Level
	}{
		{80, Near},
		{120, Near},
		{160, Mid},
		{200, Far},
	}
	for _, tt := range tests {
		instances := []Instance{at(tt.distance)}
		Classify(instances, math.Vec3{})
		if got := instances[0].Level; got != tt.want {
			t.Errorf("distance %v: Level = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestClassifyJustPastFarThreshold(t *testing.T) {
	// Squared distance one past 160^2 must classify as Far.
	instances := []Instance{at(math32.Sqrt(160*160 + 1))}
	Classify(instances, math.Vec3{})

	if instances[0].DistanceSquared <= FarDistSq {
		t.Fatalf("DistanceSquared = %v, expected just past %v", instances[0].DistanceSquared, float32(FarDistSq))
	}
	if got := instances[0].Level; got != Far {
		t.Errorf("Level = %v, want Far", got)
	}
}

func TestClassifyWritesDistanceSquared(t *testing.T) {
	instances := []Instance{{Position: math.Vec3{X: 13, Y: 0, Z: 0}}}
	Classify(instances, math.Vec3{X: 10, Y: 4, Z: 0})

	want := float32(25) // 3^2 + 4^2
	if got := instances[0].DistanceSquared; got != want {
		t.Errorf("DistanceSquared = %v, want %v", got, want)
	}
}

func TestClassifyCountsOverwritten(t *testing.T) {
	instances := []Instance{at(300), at(300), at(300)}

	visible, culled := Classify(instances, math.Vec3{})
	if visible != 0 || culled != 3 {
		t.Fatalf("first pass = %d/%d, want 0/3", visible, culled)
	}

	// Move everything close and reclassify: counts restart from zero.
	for i := range instances {
		instances[i].Position = math.Vec3{X: 10}
	}
	visible, culled = Classify(instances, math.Vec3{})
	if visible != 3 || culled != 0 {
		t.Errorf("second pass = %d/%d, want 3/0", visible, culled)
	}
}

func TestClassifyMixedCounts(t *testing.T) {
	instances := []Instance{at(10), at(130), at(170), at(210), at(500)}

	visible, culled := Classify(instances, math.Vec3{})
	if visible != 3 || culled != 2 {
		t.Errorf("counts = %d/%d, want 3/2", visible, culled)
	}
	if visible+culled != len(instances) {
		t.Errorf("counts must cover every instance")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{Near, "near"},
		{Mid, "mid"},
		{Far, "far"},
		{Frozen, "frozen"},
		{Culled, "culled"},
		{Level(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
