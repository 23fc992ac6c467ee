// Package config loads the two on-disk formats the engine needs before
// it can start: the element table (delegated to package elements) and
// the settings.data key/value file parsed here.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Warning is a recovered settings-parse problem: an unrecognized key or
// an unparseable value. Neither fails the load; the affected setting
// keeps its default.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// EngineSettings configures the grid and scheduler.
type EngineSettings struct {
	Width             int
	Height            int
	RenderInterval    time.Duration
	PhysicsInterval   time.Duration
	DirtyClearInterval int // ticks between dirty-set clears, §4.3 Open Question 1
}

// InputSettings configures the brush.
type InputSettings struct {
	BrushSize        int
	BrushMaxSize     int
	BrushSensitivity float64
}

// DebugSettings configures optional diagnostic overlays.
type DebugSettings struct {
	StartEnabled        bool
	OverlayStartEnabled bool
}

// Settings is the full parsed settings.data contents.
type Settings struct {
	Engine EngineSettings
	Input  InputSettings
	Debug  DebugSettings
}

// DefaultSettings returns the fallback values every field in
// settings.data defaults to when the file is absent or a key is
// missing/unparseable.
func DefaultSettings() Settings {
	return Settings{
		Engine: EngineSettings{
			Width:              342,
			Height:             192,
			RenderInterval:     16667 * time.Microsecond,
			PhysicsInterval:    25 * time.Millisecond,
			DirtyClearInterval: 1,
		},
		Input: InputSettings{
			BrushSize:        4,
			BrushMaxSize:     42,
			BrushSensitivity: 0.02,
		},
		Debug: DebugSettings{
			StartEnabled:        false,
			OverlayStartEnabled: false,
		},
	}
}

// LoadSettings parses the settings.data format: "category.key: value"
// lines, "#" comments, blank lines ignored. Unknown keys are ignored;
// unparseable values are ignored and keep their default. Both are
// reported as Warnings but never fail the load.
func LoadSettings(r io.Reader) (Settings, []Warning) {
	s := DefaultSettings()
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("malformed line %q", line)})
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])

		if !applySetting(&s, key, val) {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("unrecognized or unparseable setting %q = %q", key, val)})
		}
	}

	return s, warnings
}

func applySetting(s *Settings, key, val string) bool {
	switch key {
	case "engine.width":
		return setInt(&s.Engine.Width, val)
	case "engine.height":
		return setInt(&s.Engine.Height, val)
	case "engine.render_interval":
		return setMillisDuration(&s.Engine.RenderInterval, val)
	case "engine.physics_interval":
		return setMillisDuration(&s.Engine.PhysicsInterval, val)
	case "engine.dirty_clear_interval":
		return setInt(&s.Engine.DirtyClearInterval, val)
	case "input.brush_size":
		return setInt(&s.Input.BrushSize, val)
	case "input.brush_max_size":
		return setInt(&s.Input.BrushMaxSize, val)
	case "input.brush_sensitivity":
		return setFloat(&s.Input.BrushSensitivity, val)
	case "debug.start_enabled":
		return setBool(&s.Debug.StartEnabled, val)
	case "debug.overlay_start_enabled":
		return setBool(&s.Debug.OverlayStartEnabled, val)
	default:
		return false
	}
}

func setInt(dst *int, val string) bool {
	n, err := strconv.Atoi(val)
	if err != nil {
		return false
	}
	*dst = n
	return true
}

func setFloat(dst *float64, val string) bool {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return false
	}
	*dst = f
	return true
}

func setBool(dst *bool, val string) bool {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	*dst = b
	return true
}

func setMillisDuration(dst *time.Duration, val string) bool {
	ms, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return false
	}
	*dst = time.Duration(ms * float64(time.Millisecond))
	return true
}
