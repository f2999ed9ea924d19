package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

func testSeeds() ([]systems.Seed, []systems.CellStats) {
	seeds := []systems.Seed{
		{ID: 0, Position: mgl32.Vec3{2, 2, 4.5}, Radius: 2, GrowthRate: 0.2, Color: mgl32.Vec3{1, 0, 0}},
		{ID: 1, Position: mgl32.Vec3{6, 6, 1}, Radius: 1, GrowthRate: 0.1, Momentum: -0.05},
		{ID: 2, Position: mgl32.Vec3{4, 4, 6}, Radius: 3},
	}
	stats := []systems.CellStats{
		{VoxelCount: 100, JunctionCount: 8, AcuteCount: 2},
		{VoxelCount: 0},
		{VoxelCount: 300, JunctionCount: 4, AcuteCount: 4},
	}
	return seeds, stats
}

func TestSyncBuildsEntities(t *testing.T) {
	s := New()
	seeds, stats := testSeeds()
	s.Sync(1, seeds, stats)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if s.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", s.Frame())
	}

	v, ok := s.Lookup(0)
	if !ok {
		t.Fatal("seed 0 not found")
	}
	if v.Pos.X != 2 || v.Pos.Z != 4.5 || v.Body.Radius != 2 || v.Tint.R != 1 {
		t.Errorf("seed 0 view = %+v", v)
	}
	if v.Cell.Voxels != 100 || v.Cell.AcuteRatio != 0.25 {
		t.Errorf("seed 0 cell = %+v", v.Cell)
	}

	if _, ok := s.Lookup(3); ok {
		t.Error("Lookup(3) should fail")
	}
	if _, ok := s.Lookup(-1); ok {
		t.Error("Lookup(-1) should fail")
	}
}

func TestSyncUpdatesInPlace(t *testing.T) {
	s := New()
	seeds, stats := testSeeds()
	s.Sync(1, seeds, stats)

	seeds[1].Radius = 4
	seeds[1].Momentum = 0.3
	stats[1].VoxelCount = 50
	s.Sync(2, seeds, stats)

	v, _ := s.Lookup(1)
	if v.Body.Radius != 4 || v.Growth.Momentum != 0.3 || v.Cell.Voxels != 50 {
		t.Errorf("seed 1 not updated: %+v", v)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestSyncRebuildsOnCountChange(t *testing.T) {
	s := New()
	seeds, stats := testSeeds()
	s.Sync(1, seeds, stats)

	s.Sync(1, seeds[:2], stats[:2])
	if s.Len() != 2 {
		t.Fatalf("Len after shrink = %d, want 2", s.Len())
	}
	if _, ok := s.Lookup(2); ok {
		t.Error("seed 2 should be gone")
	}
	if got := len(s.Largest(10)); got != 2 {
		t.Errorf("query sees %d entities, want 2", got)
	}
}

func TestSliceMarkers(t *testing.T) {
	s := New()
	seeds, stats := testSeeds()
	s.Sync(1, seeds, stats)

	// Plane at z=4.5 passes through seed 0's center and within seed 2's
	// radius (dz=1.5 < 3); seed 1 (z=1, r=1) is out of reach.
	markers := s.SliceMarkers(4)
	if len(markers) != 2 {
		t.Fatalf("got %d markers, want 2: %+v", len(markers), markers)
	}
	if markers[0].ID != 0 || markers[1].ID != 2 {
		t.Errorf("marker ids = %d,%d, want 0,2", markers[0].ID, markers[1].ID)
	}
	if markers[0].Radius != 2 {
		t.Errorf("seed 0 cross-section = %v, want 2", markers[0].Radius)
	}
	want := float32(2.598076) // sqrt(9 - 2.25)
	if d := markers[1].Radius - want; d > 1e-4 || d < -1e-4 {
		t.Errorf("seed 2 cross-section = %v, want %v", markers[1].Radius, want)
	}
}

func TestLargestAndOccluded(t *testing.T) {
	s := New()
	seeds, stats := testSeeds()
	s.Sync(1, seeds, stats)

	top := s.Largest(2)
	if len(top) != 2 || top[0].Ref.ID != 2 || top[1].Ref.ID != 0 {
		t.Errorf("Largest(2) = %+v", top)
	}

	occ := s.Occluded()
	if len(occ) != 1 || occ[0] != 1 {
		t.Errorf("Occluded = %v, want [1]", occ)
	}
}
