// bakeinfo is a CLI utility for inspecting models and previewing
// vertex animation bake results.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/driftmark/vanim/pkg/anim"
	"github.com/driftmark/vanim/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bake":
		cmdBake(args)
	case "version", "-v", "--version":
		fmt.Println("bakeinfo " + anim.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bakeinfo - model and vertex animation bake inspector

Usage:
  bakeinfo <command> [options]

Commands:
  info <model>   Show model geometry and available animation clips
  bake <model>   Bake clips into keyframes and report the result
  version        Print the engine version

Options:
  -animations <file>   Load clips from a separate file

Examples:
  bakeinfo info assets/fox.gltf
  bakeinfo bake assets/fox
  bakeinfo bake -animations anims.iqm model.iqm`)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	animPath := fs.String("animations", "", "Load clips from a separate file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bakeinfo info <model> [-animations <file>]")
		os.Exit(1)
	}
	modelPath := fs.Arg(0)

	m, err := formats.LoadModel(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model:  %s\n", modelPath)
	fmt.Printf("Meshes: %d\n", len(m.Meshes))
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		fmt.Printf("  [%d] %d vertices, %d triangles, skinned=%v\n",
			i, mesh.VertexCount, mesh.TriangleCount, mesh.Skinned())
	}
	fmt.Printf("Bones:  %d\n", m.BoneCount)

	clips, err := formats.LoadAnimations(pickAnimPath(*animPath, modelPath), anim.SampleFPS)
	if err != nil {
		fmt.Println("\nAnimations: none")
		return
	}

	fmt.Printf("\nAnimations: %d\n", len(clips))
	for _, c := range clips {
		fmt.Printf("  %-24s %4d frames  %6.2fs\n",
			c.Name, c.FrameCount, float32(c.FrameCount)/anim.SampleFPS)
	}
}

func cmdBake(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	animPath := fs.String("animations", "", "Load clips from a separate file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: bakeinfo bake <model> [-animations <file>]")
		os.Exit(1)
	}
	modelPath := fs.Arg(0)

	m, err := formats.LoadModel(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clips, err := formats.LoadAnimations(pickAnimPath(*animPath, modelPath), anim.SampleFPS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading animations: %v\n", err)
		os.Exit(1)
	}

	system := anim.New()
	defer system.Shutdown()

	if err := system.Bake(m, clips); err != nil {
		fmt.Fprintf(os.Stderr, "Bake failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Baked %d animation(s) from %d clip(s)\n", system.AnimationCount(), len(clips))
	fmt.Printf("Vertices: %d\n", system.VertexCount())
	fmt.Println()
	fmt.Printf("%-12s %-24s %7s %10s %9s\n", "NAME", "SOURCE", "FRAMES", "KEYFRAMES", "DURATION")
	for i := 0; i < system.AnimationCount(); i++ {
		a := system.Animation(i)
		fmt.Printf("%-12s %-24s %7d %10d %8.2fs\n",
			a.Name, clips[i].Name, clips[i].FrameCount, a.KeyframeCount, a.Duration)
	}
	fmt.Printf("\nMemory: %d KB\n", system.MemoryUsageKB())
}

// pickAnimPath prefers an explicit -animations path over the model path.
func pickAnimPath(animPath, modelPath string) string {
	if animPath != "" {
		return animPath
	}
	return modelPath
}
