// Package config handles demo configuration loading and management.
package config

// Config holds all demo settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// SceneConfig holds model and instancing settings.
type SceneConfig struct {
	// ModelPath is the mesh to load. Extension optional; the loader
	// probes known formats.
	ModelPath string `yaml:"model_path"`
	// AnimationPath overrides where animation clips come from.
	// Empty means the model file itself.
	AnimationPath string `yaml:"animation_path"`
	// Instances is the herd size. Values above the engine cap are
	// clamped at startup.
	Instances  int     `yaml:"instances"`
	RingRadius float32 `yaml:"ring_radius"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Scene: SceneConfig{
			ModelPath:     "assets/fox",
			AnimationPath: "",
			Instances:     25,
			RingRadius:    80,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
