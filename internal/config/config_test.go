package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("Width = %d, want 1280", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("Height = %d, want 720", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("Fullscreen = true, want false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("VSync = false, want true by default")
	}

	if cfg.Scene.ModelPath != "assets/fox" {
		t.Errorf("ModelPath = %q, want assets/fox", cfg.Scene.ModelPath)
	}
	if cfg.Scene.AnimationPath != "" {
		t.Errorf("AnimationPath = %q, want empty", cfg.Scene.AnimationPath)
	}
	if cfg.Scene.Instances != 25 {
		t.Errorf("Instances = %d, want 25", cfg.Scene.Instances)
	}
	if cfg.Scene.RingRadius != 80 {
		t.Errorf("RingRadius = %v, want 80", cfg.Scene.RingRadius)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

scene:
  model_path: "models/wolf.iqm"
  animation_path: "models/wolf_anims.iqm"
  instances: 12
  ring_radius: 60

logging:
  level: "debug"
  log_file: "demo.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("Width = %d, want 1920", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("Height = %d, want 1080", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("Fullscreen = false, want true")
	}
	if cfg.Graphics.VSync {
		t.Error("VSync = true, want false")
	}

	if cfg.Scene.ModelPath != "models/wolf.iqm" {
		t.Errorf("ModelPath = %q, want models/wolf.iqm", cfg.Scene.ModelPath)
	}
	if cfg.Scene.AnimationPath != "models/wolf_anims.iqm" {
		t.Errorf("AnimationPath = %q, want models/wolf_anims.iqm", cfg.Scene.AnimationPath)
	}
	if cfg.Scene.Instances != 12 {
		t.Errorf("Instances = %d, want 12", cfg.Scene.Instances)
	}
	if cfg.Scene.RingRadius != 60 {
		t.Errorf("RingRadius = %v, want 60", cfg.Scene.RingRadius)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "demo.log" {
		t.Errorf("LogFile = %q, want demo.log", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	// Only scene settings: everything else keeps defaults.
	yamlContent := "scene:\n  instances: 5\n"
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Scene.Instances != 5 {
		t.Errorf("Instances = %d, want 5", cfg.Scene.Instances)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("Width = %d, want default 1280", cfg.Graphics.Width)
	}
	if cfg.Scene.ModelPath != "assets/fox" {
		t.Errorf("ModelPath = %q, want default assets/fox", cfg.Scene.ModelPath)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  instances: 3\n"), 0644); err != nil {
		t.Fatalf("create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(t *testing.T, cfg *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Level = %q, want debug", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "model flag",
			setup: func() { *flagModel = "models/deer.gltf" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.ModelPath != "models/deer.gltf" {
					t.Errorf("ModelPath = %q, want models/deer.gltf", cfg.Scene.ModelPath)
				}
			},
			teardown: func() { *flagModel = "" },
		},
		{
			name:  "animations flag",
			setup: func() { *flagAnims = "models/deer_run.iqm" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.AnimationPath != "models/deer_run.iqm" {
					t.Errorf("AnimationPath = %q, want models/deer_run.iqm", cfg.Scene.AnimationPath)
				}
			},
			teardown: func() { *flagAnims = "" },
		},
		{
			name:  "instances flag",
			setup: func() { *flagInstances = 10 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Instances != 10 {
					t.Errorf("Instances = %d, want 10", cfg.Scene.Instances)
				}
			},
			teardown: func() { *flagInstances = 0 },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("Fullscreen = true, want false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("Fullscreen = false, want true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("Width = %d, want 2560", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("Height = %d, want 1440", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
scene:
  instances: 8
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	// Width comes from the flag, height and instances from the file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("Width = %d, want 1920 from flag", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("Height = %d, want 900 from file", cfg.Graphics.Height)
	}
	if cfg.Scene.Instances != 8 {
		t.Errorf("Instances = %d, want 8 from file", cfg.Scene.Instances)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scene.Instances = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.Scene.Instances != 7 {
		t.Errorf("Instances = %d after round-trip, want 7", loaded.Scene.Instances)
	}
}
