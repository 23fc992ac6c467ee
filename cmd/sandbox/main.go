// Command sandbox is a windowed driver for the falling-sand engine: a
// raylib window blits the engine's composited RGBA8 frame each tick and
// translates mouse/wheel input into the engine's input-producer
// contract. The core engine package never imports raylib; this is the
// only place that boundary is crossed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/grains/config"
	"github.com/pthm-cable/grains/engine"
)

var (
	elementsPath = flag.String("elements", "", "Path to the elements.data file")
	settingsPath = flag.String("settings", "", "Path to the settings.data file")
	scenesPath   = flag.String("scenes", "", "Optional scenes.yaml preset file")
	seed         = flag.Int64("seed", 1, "RNG seed")
)

// scene is a named starting layout: a paint-circle stamp list applied
// once at startup. scenes.yaml is purely a convenience for camera-ready
// starting layouts ("sand pile", "water over gas", "equalisation
// demo") and never touches the required elements.data/settings.data
// formats.
type scene struct {
	Name   string `yaml:"name"`
	Stamps []struct {
		X         int    `yaml:"x"`
		Y         int    `yaml:"y"`
		Radius    int    `yaml:"radius"`
		ElementID uint16 `yaml:"element_id"`
	} `yaml:"stamps"`
}

func loadScenes(path string) ([]scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var scenes []scene
	if err := yaml.NewDecoder(f).Decode(&scenes); err != nil {
		return nil, fmt.Errorf("parsing scenes file: %w", err)
	}
	return scenes, nil
}

func main() {
	flag.Parse()

	if *elementsPath == "" || *settingsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sandbox --elements PATH --settings PATH [--scenes PATH]")
		os.Exit(1)
	}

	bundle, err := config.Init(*elementsPath, *settingsPath)
	if err != nil {
		slog.Error("load_failure", "error", err)
		os.Exit(1)
	}

	e := engine.New(bundle, *seed)

	if *scenesPath != "" {
		scenes, err := loadScenes(*scenesPath)
		if err != nil {
			slog.Warn("scenes_load_failed", "path", *scenesPath, "error", err)
		} else if len(scenes) > 0 {
			applyScene(e, scenes[0])
		}
	}

	width, height := int32(e.Width()), int32(e.Height())

	rl.InitWindow(width*4, height*4, "grains")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	img := rl.GenImageColor(int(width), int(height), rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(tex)

	e.Start()

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyEscape) {
			break
		}

		pollInput(e, width, height)

		frame := e.Tick(time.Now())
		rl.UpdateTexture(tex, frame)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		rl.DrawTexturePro(
			tex,
			rl.Rectangle{X: 0, Y: 0, Width: float32(width), Height: float32(height)},
			rl.Rectangle{X: 0, Y: 0, Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())},
			rl.Vector2{}, 0, rl.White,
		)
		rl.DrawFPS(10, 10)
		rl.EndDrawing()
	}
}

func applyScene(e *engine.Engine, s scene) {
	for _, stamp := range s.Stamps {
		e.PaintCircle(stamp.X, stamp.Y, stamp.Radius, stamp.ElementID)
	}
	slog.Info("scene_applied", "name", s.Name, "stamps", len(s.Stamps))
}

// pollInput translates raylib's mouse/wheel state into the engine's
// normalized PointerEvent/wheel-delta contract, scaling display pixels
// down to sim-space cells.
func pollInput(e *engine.Engine, simW, simH int32) {
	scaleX := float64(simW) / float64(rl.GetScreenWidth())
	scaleY := float64(simH) / float64(rl.GetScreenHeight())

	pos := rl.GetMousePosition()
	x := int(float64(pos.X) * scaleX)
	y := int(float64(simH) - float64(pos.Y)*scaleY) // display is y-down; sim is y-up
	onCanvas := x >= 0 && x < int(simW) && y >= 0 && y < int(simH)

	kind := engine.PointerMove
	button := engine.ButtonPrimary
	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		kind = engine.PointerDown
		button = engine.ButtonPrimary
	case rl.IsMouseButtonPressed(rl.MouseRightButton):
		kind = engine.PointerDown
		button = engine.ButtonSecondary
	case rl.IsMouseButtonReleased(rl.MouseLeftButton), rl.IsMouseButtonReleased(rl.MouseRightButton):
		kind = engine.PointerUp
	}

	e.PushPointerEvent(engine.PointerEvent{Kind: kind, Button: button, X: x, Y: y, OnCanvas: onCanvas})

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		e.PushWheelDelta(float64(wheel))
	}
}
