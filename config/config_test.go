package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Grid.Width <= 0 || cfg.Grid.Height <= 0 || cfg.Grid.Depth <= 0 {
		t.Errorf("default grid %+v must be positive", cfg.Grid)
	}
	if cfg.Seeds.Count <= 0 {
		t.Errorf("default seed count %d must be positive", cfg.Seeds.Count)
	}
	if cfg.Physics.Mode != "balanced" {
		t.Errorf("default mode = %q, want balanced", cfg.Physics.Mode)
	}
	if want := cfg.Grid.Width * cfg.Grid.Height * cfg.Grid.Depth; cfg.Derived.Cells != want {
		t.Errorf("derived cells = %d, want %d", cfg.Derived.Cells, want)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("grid:\n  width: 16\nphysics:\n  mode: inverse\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	defaults, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Grid.Width != 16 {
		t.Errorf("grid width = %d, want 16", cfg.Grid.Width)
	}
	if cfg.Grid.Height != defaults.Grid.Height {
		t.Errorf("grid height = %d, want default %d", cfg.Grid.Height, defaults.Grid.Height)
	}
	if cfg.Physics.Mode != "inverse" {
		t.Errorf("mode = %q, want inverse", cfg.Physics.Mode)
	}
	if cfg.Physics.Threshold != defaults.Physics.Threshold {
		t.Errorf("threshold = %v, want default %v", cfg.Physics.Threshold, defaults.Physics.Threshold)
	}
	if cfg.Derived.Cells != 16*cfg.Grid.Height*cfg.Grid.Depth {
		t.Errorf("derived cells not recomputed: %d", cfg.Derived.Cells)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seeds.Count = 7
	cfg.Physics.Damping = 0.25

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Seeds.Count != 7 || back.Physics.Damping != 0.25 {
		t.Errorf("round trip lost values: count=%d damping=%v", back.Seeds.Count, back.Physics.Damping)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg() == nil {
		t.Fatal("Cfg() returned nil after init")
	}
}
