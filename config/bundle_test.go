package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleElements = `
[10]
name: Sand
phase: solid
category: sands
base_color: #C2B280
blend_color: #C2B280
highlight_color: #D8C89A
is_movable: true
density: 5
cohesion: 0
repose_angle: 35
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestInit_LoadsRegistryAndSettings(t *testing.T) {
	elementsPath := writeTemp(t, "elements.data", sampleElements)
	settingsPath := writeTemp(t, "settings.data", "engine.width: 200\n")

	b, err := Init(elementsPath, settingsPath)
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if b.Registry == nil {
		t.Fatal("expected non-nil registry")
	}
	if b.Settings.Engine.Width != 200 {
		t.Errorf("expected width 200, got %d", b.Settings.Engine.Width)
	}
}

func TestInit_MissingElementsFileIsFatal(t *testing.T) {
	settingsPath := writeTemp(t, "settings.data", "")
	_, err := Init(filepath.Join(t.TempDir(), "missing.data"), settingsPath)
	if err == nil {
		t.Fatal("expected error for missing elements file")
	}
}

func TestInit_MissingSettingsFileIsFatal(t *testing.T) {
	elementsPath := writeTemp(t, "elements.data", sampleElements)
	_, err := Init(elementsPath, filepath.Join(t.TempDir(), "missing.data"))
	if err == nil {
		t.Fatal("expected error for missing settings file")
	}
}
