package anim

import (
	"errors"
	"testing"

	"github.com/driftmark/vanim/pkg/math"
	"github.com/driftmark/vanim/pkg/model"
)

// rigModel builds a minimal skinned model: one root bone at the origin,
// every vertex fully bound to it, positions spread along X.
func rigModel(vertexCount int) *model.Model {
	m := &model.Model{
		BoneCount: 1,
		Bones:     []model.BoneInfo{{Name: "root", Parent: -1}},
		BindPose:  []model.Transform{model.TransformIdentity()},
	}
	mesh := model.Mesh{
		VertexCount:  vertexCount,
		Vertices:     make([]float32, vertexCount*3),
		AnimVertices: make([]float32, vertexCount*3),
		BoneIDs:      make([]uint8, vertexCount*4),
		BoneWeights:  make([]float32, vertexCount*4),
	}
	for v := 0; v < vertexCount; v++ {
		mesh.Vertices[v*3] = float32(v)
		mesh.BoneWeights[v*4] = 1
	}
	m.Meshes = []model.Mesh{mesh}
	return m
}

// risingClip builds a clip whose frame f lifts the root bone to y=f, so
// every baked keyframe is distinguishable by its Y values.
func risingClip(frames int) model.Animation {
	poses := make([][]model.Transform, frames)
	for f := 0; f < frames; f++ {
		pose := model.TransformIdentity()
		pose.Translation = math.Vec3{Y: float32(f)}
		poses[f] = []model.Transform{pose}
	}
	return model.Animation{
		BoneCount:  1,
		FrameCount: frames,
		Bones:      []model.BoneInfo{{Name: "root", Parent: -1}},
		FramePoses: poses,
	}
}

func risingClips(n, frames int) []model.Animation {
	clips := make([]model.Animation, n)
	for i := range clips {
		clips[i] = risingClip(frames)
	}
	return clips
}

func TestBakeCountAndDuration(t *testing.T) {
	s := New()
	if err := s.Bake(rigModel(4), risingClips(3, 30)); err != nil {
		t.Fatalf("Bake() error: %v", err)
	}

	if got := s.AnimationCount(); got != 3 {
		t.Fatalf("AnimationCount() = %d, want 3", got)
	}
	for i := 0; i < 3; i++ {
		a := s.Animation(i)
		want := float32(30) / SampleFPS
		if a.Duration != want {
			t.Errorf("animation %d duration = %v, want %v", i, a.Duration, want)
		}
		if !a.Looping {
			t.Errorf("animation %d should loop", i)
		}
	}

	wantNames := []string{"Survey", "Walk", "Run"}
	for i, want := range wantNames {
		if got := s.Animation(i).Name; got != want {
			t.Errorf("animation %d name = %q, want %q", i, got, want)
		}
	}
}

func TestBakeDropsExtraClips(t *testing.T) {
	s := New()
	if err := s.Bake(rigModel(2), risingClips(12, 10)); err != nil {
		t.Fatalf("Bake() error: %v", err)
	}
	if got := s.AnimationCount(); got != MaxAnimations {
		t.Errorf("AnimationCount() = %d, want %d", got, MaxAnimations)
	}
}

func TestBakeKeyframeStride(t *testing.T) {
	tests := []struct {
		frames        int
		wantKeyframes int
	}{
		{4, 1},   // stride 4: frame 0
		{8, 2},   // stride 4: frames 0, 4
		{40, 10}, // stride 4 still applies at the boundary
		{41, 6},  // stride 8: frames 0, 8, 16, 24, 32, 40
		{160, 20},
		{200, 20}, // 25 samples capped at capacity
	}
	for _, tt := range tests {
		s := New()
		if err := s.Bake(rigModel(2), risingClips(1, tt.frames)); err != nil {
			t.Fatalf("Bake(%d frames) error: %v", tt.frames, err)
		}
		if got := s.Animation(0).KeyframeCount; got != tt.wantKeyframes {
			t.Errorf("%d frames: KeyframeCount = %d, want %d", tt.frames, got, tt.wantKeyframes)
		}
	}
}

func TestBakeKeyframeTimestamps(t *testing.T) {
	s := New()
	if err := s.Bake(rigModel(2), risingClips(1, 41)); err != nil {
		t.Fatalf("Bake() error: %v", err)
	}

	a := s.Animation(0)
	for k := 0; k < a.KeyframeCount; k++ {
		want := float32(k*8) / SampleFPS
		if got := a.Keyframes[k].Timestamp; got != want {
			t.Errorf("keyframe %d timestamp = %v, want %v", k, got, want)
		}
	}
}

func TestBakeCapturesDeformedVertices(t *testing.T) {
	s := New()
	if err := s.Bake(rigModel(3), risingClips(1, 41)); err != nil {
		t.Fatalf("Bake() error: %v", err)
	}

	// Keyframe k samples frame k*8, which lifts every vertex to y=k*8.
	a := s.Animation(0)
	for k := 0; k < a.KeyframeCount; k++ {
		wantY := float32(k * 8)
		if got := a.Keyframes[k].Vertices[1]; got != wantY {
			t.Errorf("keyframe %d vertex 0 y = %v, want %v", k, got, wantY)
		}
	}
}

func TestBakeActivatesFirstAnimation(t *testing.T) {
	s := New()
	if err := s.Bake(rigModel(2), risingClips(2, 10)); err != nil {
		t.Fatalf("Bake() error: %v", err)
	}
	if got := s.CurrentAnimation(); got != 0 {
		t.Errorf("CurrentAnimation() = %d, want 0", got)
	}
	if got := s.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
	if s.InterpolatedVertices() == nil {
		t.Error("InterpolatedVertices() should be allocated after bake")
	}
	if got := s.VertexCount(); got != 2 {
		t.Errorf("VertexCount() = %d, want 2", got)
	}
}

func TestBakeRequiresInitializedSystem(t *testing.T) {
	var s System
	err := s.Bake(rigModel(2), risingClips(1, 10))
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Bake() on zero value = %v, want ErrNotInitialized", err)
	}
}

func TestBakeCompatibilityChecks(t *testing.T) {
	boneless := rigModel(2)
	boneless.BoneCount = 0

	noHierarchy := rigModel(2)
	noHierarchy.Bones = nil

	noBindPose := rigModel(2)
	noBindPose.BindPose = nil

	unskinned := rigModel(2)
	unskinned.Meshes[0].BoneIDs = nil

	mismatch := risingClip(10)
	mismatch.BoneCount = 3

	noPoses := risingClip(10)
	noPoses.FramePoses = nil

	tests := []struct {
		name  string
		model *model.Model
		clips []model.Animation
	}{
		{"no meshes", &model.Model{BoneCount: 1}, risingClips(1, 10)},
		{"no clips", rigModel(2), nil},
		{"no bones", boneless, risingClips(1, 10)},
		{"no hierarchy", noHierarchy, risingClips(1, 10)},
		{"no bind pose", noBindPose, risingClips(1, 10)},
		{"bone count mismatch", rigModel(2), []model.Animation{mismatch}},
		{"clip missing poses", rigModel(2), []model.Animation{noPoses}},
		{"no skinning data", unskinned, risingClips(1, 10)},
	}

	for _, tt := range tests {
		s := New()
		err := s.Bake(tt.model, tt.clips)
		if !errors.Is(err, ErrIncompatibleModel) {
			t.Errorf("%s: Bake() = %v, want ErrIncompatibleModel", tt.name, err)
		}
		if s.AnimationCount() != 0 {
			t.Errorf("%s: failed bake must not populate the table", tt.name)
		}
		if s.InterpolatedVertices() != nil {
			t.Errorf("%s: failed bake must not allocate the scratch buffer", tt.name)
		}
	}
}
