package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/grains/elements"
)

// Bundle is everything engine.New needs to start: the parsed element
// table and the parsed settings. There is deliberately no package-level
// singleton here (unlike the teacher's Cfg()) — each caller passes its
// own Bundle to engine.New; cmd/calibrate loads one Bundle and builds a
// separate Engine from it for every seeded run.
type Bundle struct {
	Registry *elements.Registry
	Settings Settings
}

// Init opens elementsPath and settingsPath, parses both, logs any
// recovered Warnings, and returns the assembled Bundle. A LoadFailure —
// either file missing or unreadable — is fatal and returned as a plain
// error; it is the caller's job (cmd/sandbox, cmd/calibrate) to decide
// what to do with it, typically exiting before engine.New is ever
// called.
func Init(elementsPath, settingsPath string) (*Bundle, error) {
	elementsFile, err := os.Open(elementsPath)
	if err != nil {
		return nil, fmt.Errorf("opening elements file: %w", err)
	}
	defer elementsFile.Close()

	registry, warnings := elements.Load(elementsFile)
	for _, w := range warnings {
		slog.Warn("element_parse_warning", "file", elementsPath, "detail", w.String())
	}

	settingsFile, err := os.Open(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer settingsFile.Close()

	settings, settingsWarnings := LoadSettings(settingsFile)
	for _, w := range settingsWarnings {
		slog.Warn("settings_parse_warning", "file", settingsPath, "detail", w.String())
	}

	return &Bundle{Registry: registry, Settings: settings}, nil
}
