// Package main is the vertex animation playback demo: a ring of baked
// model instances with distance-based detail tiers.
package main

import (
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/driftmark/vanim/internal/config"
	"github.com/driftmark/vanim/internal/engine/camera"
	"github.com/driftmark/vanim/internal/engine/debug"
	"github.com/driftmark/vanim/internal/engine/input"
	"github.com/driftmark/vanim/internal/engine/renderer"
	"github.com/driftmark/vanim/internal/engine/window"
	"github.com/driftmark/vanim/internal/logger"
	"github.com/driftmark/vanim/pkg/anim"
	"github.com/driftmark/vanim/pkg/formats"
	"github.com/driftmark/vanim/pkg/lod"
	"github.com/driftmark/vanim/pkg/math"
)

const (
	baseTitle     = "Vanim Fox Demo"
	rotationSpeed = 30.0 * math32.Pi / 180 // camera orbit, radians per second
	degToRad      = math32.Pi / 180
)

// Clip names cycled by the A key, in cycle order.
var cycleNames = []string{"Survey", "Walk", "Run"}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Vanim Fox Demo ===", zap.String("version", anim.Version))
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("demo error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("demo closed normally")
}

func run(cfg *config.Config) error {
	// Load and bake before any window exists so asset problems fail fast.
	m, err := formats.LoadModel(cfg.Scene.ModelPath)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", cfg.Scene.ModelPath, err)
	}

	animPath := cfg.Scene.AnimationPath
	if animPath == "" {
		animPath = cfg.Scene.ModelPath
	}
	clips, err := formats.LoadAnimations(animPath, anim.SampleFPS)
	if err != nil {
		return fmt.Errorf("loading animations %s: %w", animPath, err)
	}

	logger.Info("model loaded",
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("bones", m.BoneCount),
		zap.Int("clips", len(clips)),
	)

	system := anim.NewWithConfig(anim.Config{Logger: logger.Log})
	defer system.Shutdown()

	if err := system.Bake(m, clips); err != nil {
		return fmt.Errorf("baking animations: %w", err)
	}
	logger.Info("animations baked",
		zap.Int("animations", system.AnimationCount()),
		zap.Int("memory_kb", system.MemoryUsageKB()),
	)

	instances := buildRing(cfg.Scene.Instances, cfg.Scene.RingRadius)

	win, err := window.New(window.Config{
		Title:      baseTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	rend, err := renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		return err
	}
	defer rend.Close()

	if err := rend.UploadModel(m); err != nil {
		return err
	}
	rend.CreateGrid(20, 10)

	cam := camera.NewOrbitCamera()
	in := input.New()
	shots := debug.NewScreenshotCapture("", "vanim")

	var (
		current   int // index into cycleNames
		showDebug bool
		paused    bool
		wantShot  bool

		visible, culled int
		frameTime       float32
		frameCount      int
	)

	lastTicks := sdl.GetTicks64()
	for {
		quit := in.Update()

		now := sdl.GetTicks64()
		dt := float32(now-lastTicks) / 1000.0
		lastTicks = now

		for _, e := range in.Events() {
			switch e.Type {
			case input.EventWindowResize:
				rend.Resize(e.Width, e.Height)

			case input.EventKeyDown:
				switch e.Key {
				case sdl.SCANCODE_ESCAPE:
					quit = true

				case sdl.SCANCODE_A:
					current = (current + 1) % len(cycleNames)
					name := cycleNames[current]
					if err := system.SetAnimationByName(name); err != nil {
						logger.Warn("animation not available", zap.String("name", name))
						continue
					}
					for i := range instances {
						instances[i].AnimationIndex = current
					}
					logger.Info("switched animation", zap.String("name", name))

				case sdl.SCANCODE_B:
					showDebug = !showDebug
					if showDebug {
						logger.Info(system.DebugString())
					}

				case sdl.SCANCODE_SPACE:
					paused = !paused
					system.SetPaused(paused)
					logger.Info("pause toggled", zap.Bool("paused", paused))

				case sdl.SCANCODE_F12:
					wantShot = true
				}

			case input.EventMouseMove:
				if in.IsMouseButtonHeld(sdl.BUTTON_LEFT) {
					cam.HandleDrag(float32(e.RelX), float32(e.RelY))
				}

			case input.EventMouseWheel:
				cam.HandleZoom(float32(e.WheelY))
			}
		}
		if quit {
			break
		}

		if in.IsKeyHeld(sdl.SCANCODE_LEFT) {
			cam.Rotate(-rotationSpeed * dt)
		}
		if in.IsKeyHeld(sdl.SCANCODE_RIGHT) {
			cam.Rotate(rotationSpeed * dt)
		}

		// Pause freezes both the playback clock and tier reassignment.
		if !paused {
			system.Update(dt)
			visible, culled = lod.Classify(instances, cam.Position())
		}

		frameTime += dt
		frameCount++
		if frameTime >= 1.0 {
			fps := float32(frameCount) / frameTime
			frameTime = 0
			frameCount = 0

			stats := system.Stats(visible, culled)
			win.SetTitle(fmt.Sprintf("%s | %.1f FPS | %d visible / %d culled",
				baseTitle, fps, stats.VisibleInstances, stats.CulledInstances))

			fields := []zap.Field{
				zap.Float32("fps", fps),
				zap.Int("visible", stats.VisibleInstances),
				zap.Int("culled", stats.CulledInstances),
				zap.Int("updates", stats.AnimationUpdates),
				zap.Float32("avg_fps", stats.AverageFPS),
				zap.Int("memory_kb", stats.MemoryUsageKB),
			}
			if showDebug {
				logger.Info("frame stats", fields...)
			} else {
				logger.Debug("frame stats", fields...)
			}
		}

		w, h := win.GetSize()
		proj := math.Perspective(45*degToRad, float32(w)/float32(h), 0.5, 2000)
		rend.Begin(cam.ViewMatrix(), proj)
		rend.DrawGrid()

		rend.UpdateMeshVertices(0, system.InterpolatedVertices())
		for i := range instances {
			if !instances[i].Visible {
				continue
			}
			rend.DrawModel(instanceTransform(&instances[i]), tintFor(instances[i].Level))
		}

		rend.End()

		// Read back before the swap, while the frame is still in the
		// back buffer.
		if wantShot {
			wantShot = false
			if path, err := shots.CaptureFromPixels(rend.ReadPixels(w, h), w, h); err != nil {
				logger.Warn("screenshot failed", zap.Error(err))
			} else {
				logger.Info("screenshot saved", zap.String("path", path))
			}
		}

		win.SwapBuffers()
	}

	return nil
}

// buildRing places count instances on a circle, facing along it, with
// staggered per-instance clocks.
func buildRing(count int, radius float32) []lod.Instance {
	if count > lod.MaxInstances {
		logger.Warn("instance count clamped",
			zap.Int("requested", count),
			zap.Int("max", lod.MaxInstances),
		)
		count = lod.MaxInstances
	}
	if count < 1 {
		count = 1
	}

	instances := make([]lod.Instance, count)
	for i := range instances {
		angle := 2 * math32.Pi * float32(i) / float32(count)
		instances[i] = lod.Instance{
			Position: math.Vec3{
				X: math32.Cos(angle) * radius,
				Z: math32.Sin(angle) * radius,
			},
			Rotation:      math.Vec3{Y: angle/degToRad + 90},
			Scale:         1.0,
			AnimationTime: float32(i) * 0.1,
			Level:         lod.Near,
			Visible:       true,
		}
	}
	return instances
}

// instanceTransform builds the model matrix: scale, then rotate, then
// translate.
func instanceTransform(inst *lod.Instance) math.Mat4 {
	m := math.Translate(inst.Position.X, inst.Position.Y, inst.Position.Z)
	m = m.Mul(math.RotateZ(inst.Rotation.Z * degToRad))
	m = m.Mul(math.RotateY(inst.Rotation.Y * degToRad))
	m = m.Mul(math.RotateX(inst.Rotation.X * degToRad))
	return m.Mul(math.Scale(inst.Scale, inst.Scale, inst.Scale))
}

func tintFor(level lod.Level) renderer.Tint {
	switch level {
	case lod.Near:
		return renderer.TintWhite
	case lod.Mid:
		return renderer.TintLightGray
	case lod.Far:
		return renderer.TintGray
	default:
		return renderer.TintDarkGray
	}
}
