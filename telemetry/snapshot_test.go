package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	d := systems.Dims{W: 16, H: 12, D: 8}
	seeds := []systems.Seed{
		{ID: 0, Position: mgl32.Vec3{1.5, 2.5, 3.5}, Radius: 2, GrowthRate: 0.2, Momentum: 0.05, Color: mgl32.Vec3{1, 0, 0}},
		{ID: 1, Position: mgl32.Vec3{10, 6, 4}, Radius: 1.25, GrowthRate: 0.15, Momentum: -0.1, Color: mgl32.Vec3{0, 1, 0}},
	}
	pp := systems.PhysicsParams{
		Mode:         systems.ModeInverse,
		Threshold:    0.35,
		Damping:      0.7,
		MinRadius:    0.5,
		MaxRadius:    6,
		CentroidPull: 0.1,
	}
	snapshot := NewSnapshot(d, 1000, pp, 42, seeds)

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != SnapshotVersion {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, SnapshotVersion)
	}
	if loaded.RNGSeed != 42 {
		t.Errorf("RNGSeed mismatch: got %d, want 42", loaded.RNGSeed)
	}
	if loaded.Frame != 1000 {
		t.Errorf("Frame mismatch: got %d, want 1000", loaded.Frame)
	}
	if loaded.Dims() != d {
		t.Errorf("Dims mismatch: got %v, want %v", loaded.Dims(), d)
	}
	if loaded.Physics.Mode != "inverse" {
		t.Errorf("Mode mismatch: got %q, want inverse", loaded.Physics.Mode)
	}
	gotPhysics, err := loaded.RestorePhysics()
	if err != nil {
		t.Fatalf("RestorePhysics: %v", err)
	}
	if gotPhysics != pp {
		t.Errorf("physics: got %+v, want %+v", gotPhysics, pp)
	}

	restored, err := loaded.RestoreSeeds()
	if err != nil {
		t.Fatalf("RestoreSeeds: %v", err)
	}
	for i := range seeds {
		if restored[i] != seeds[i] {
			t.Errorf("seed %d: got %+v, want %+v", i, restored[i], seeds[i])
		}
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Frame: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestRestoreSeedsRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name  string
		seeds []SeedState
	}{
		{"duplicate", []SeedState{{ID: 0}, {ID: 0}}},
		{"out of range", []SeedState{{ID: 0}, {ID: 5}}},
		{"negative", []SeedState{{ID: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Snapshot{Version: SnapshotVersion, Seeds: tt.seeds}
			if _, err := s.RestoreSeeds(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRestoreSeedsOrdersByID(t *testing.T) {
	s := &Snapshot{Seeds: []SeedState{{ID: 1, Radius: 2}, {ID: 0, Radius: 1}}}
	seeds, err := s.RestoreSeeds()
	if err != nil {
		t.Fatal(err)
	}
	if seeds[0].Radius != 1 || seeds[1].Radius != 2 {
		t.Errorf("seeds not ordered by id: %+v", seeds)
	}
}

func TestRestorePhysicsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		physics PhysicsState
	}{
		{"unknown mode", PhysicsState{Mode: "sideways", Threshold: 0.5, MaxRadius: 4}},
		{"threshold out of range", PhysicsState{Mode: "balanced", Threshold: 1.5, MaxRadius: 4}},
		{"radius bounds inverted", PhysicsState{Mode: "balanced", Threshold: 0.5, MinRadius: 5, MaxRadius: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Snapshot{Version: SnapshotVersion, Physics: tt.physics}
			if _, err := s.RestorePhysics(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}
