package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadModel_DirectPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte(triangleOBJ), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	if len(m.Meshes) != 1 {
		t.Errorf("expected 1 mesh, got %d", len(m.Meshes))
	}
}

func TestLoadModel_ProbesExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fox.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m, err := LoadModel(filepath.Join(dir, "fox"))
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	if m.Meshes[0].VertexCount != 4 {
		t.Errorf("expected the OBJ quad, got %d vertices", m.Meshes[0].VertexCount)
	}
}

func TestLoadModel_PrefersGLTFOverOBJ(t *testing.T) {
	dir := t.TempDir()
	gltfPath := writeGLTFTriangle(t, dir)
	if err := os.Rename(gltfPath, filepath.Join(dir, "fox.gltf")); err != nil {
		t.Fatalf("failed to rename fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fox.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	m, err := LoadModel(filepath.Join(dir, "fox"))
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	// The glTF triangle wins over the OBJ quad.
	if m.Meshes[0].VertexCount != 3 {
		t.Errorf("expected the glTF triangle, got %d vertices", m.Meshes[0].VertexCount)
	}
}

func TestLoadModel_NotFound(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestLoadModelFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadModelFile("model.dae")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadAnimations_ProbesPastStaticFormats(t *testing.T) {
	dir := t.TempDir()
	gltfPath := writeGLTFLiftAnimation(t, dir)
	if err := os.Rename(gltfPath, filepath.Join(dir, "fox.gltf")); err != nil {
		t.Fatalf("failed to rename fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fox.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	anims, err := LoadAnimations(filepath.Join(dir, "fox"), 20)
	if err != nil {
		t.Fatalf("failed to load animations: %v", err)
	}
	if len(anims) != 1 || anims[0].Name != "lift" {
		t.Errorf("expected the glTF 'lift' clip, got %d clips", len(anims))
	}
}

func TestLoadAnimations_OnlyStaticFormats(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fox.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := LoadAnimations(filepath.Join(dir, "fox"), 20)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestLoadAnimationsFile_OBJ(t *testing.T) {
	_, err := LoadAnimationsFile("model.obj", 20)
	if !errors.Is(err, ErrNoAnimationData) {
		t.Errorf("expected ErrNoAnimationData, got %v", err)
	}
}
