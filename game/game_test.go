package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/ui"
)

func init() {
	config.MustInit("")
	cfg := config.Cfg()
	cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Depth = 12, 12, 12
	cfg.Seeds.Count = 6
	cfg.Compute.Workers = 2
	cfg.Compute.BatchSize = 128
	cfg.Telemetry.StatsInterval = 1
	cfg.Telemetry.SeedSampleInterval = 2
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	return g
}

func TestHeadlessRunWritesTelemetry(t *testing.T) {
	out := t.TempDir()
	g := newHeadless(t, Options{Seed: 3, OutputDir: out, StepsPerUpdate: 2})

	for i := 0; i < 3; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("UpdateHeadless: %v", err)
		}
	}
	if g.Frame() != 6 {
		t.Errorf("Frame() = %d, want 6", g.Frame())
	}
	if got := g.LastStats().Frame; got != 6 {
		t.Errorf("last stats frame = %d, want 6", got)
	}
	if cov := g.LastStats().Coverage; cov != 1 {
		t.Errorf("coverage = %v, want 1", cov)
	}
	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv", "seeds.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestSnapshotResume(t *testing.T) {
	snapDir := t.TempDir()
	g := newHeadless(t, Options{Seed: 11, SnapshotDir: snapDir})
	edited := g.physics
	edited.Threshold = 0.37
	edited.Damping = 0.6
	edited.CentroidPull = 0.2
	g.setPhysics(edited)
	for i := 0; i < 4; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("UpdateHeadless: %v", err)
		}
	}
	want := append(g.Pipeline().Seeds()[:0:0], g.Pipeline().Seeds()...)
	g.Unload() // writes snapshot_4.json

	r := newHeadless(t, Options{ResumePath: filepath.Join(snapDir, "snapshot_4.json")})
	defer r.Unload()

	if r.Frame() != 4 {
		t.Errorf("resumed Frame() = %d, want 4", r.Frame())
	}
	if r.rngSeed != 11 {
		t.Errorf("resumed rng seed = %d, want 11", r.rngSeed)
	}
	if got := r.Pipeline().Params().Physics; got != edited {
		t.Errorf("resumed physics = %+v, want %+v", got, edited)
	}
	got := r.Pipeline().Seeds()
	if len(got) != len(want) {
		t.Fatalf("resumed %d seeds, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("seed %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if err := r.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless after resume: %v", err)
	}
	if r.Frame() != 5 {
		t.Errorf("Frame() after resume step = %d, want 5", r.Frame())
	}
}

func TestReseedResetsFrames(t *testing.T) {
	g := newHeadless(t, Options{Seed: 5})
	defer g.Unload()

	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}
	before := append(g.Pipeline().Seeds()[:0:0], g.Pipeline().Seeds()...)

	g.reseed()

	if g.Frame() != 0 {
		t.Errorf("Frame() after reseed = %d, want 0", g.Frame())
	}
	after := g.Pipeline().Seeds()
	if len(after) != len(before) {
		t.Fatalf("reseed changed count %d -> %d", len(before), len(after))
	}
	same := true
	for i := range after {
		if after[i].Position != before[i].Position {
			same = false
		}
	}
	if same {
		t.Error("reseed kept every position")
	}
}

func TestReseedKeepsEditedPhysics(t *testing.T) {
	g := newHeadless(t, Options{Seed: 13})
	defer g.Unload()

	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}

	edited := g.physics
	edited.Threshold = 0.123
	g.setPhysics(edited)
	g.reseed()

	if got := g.Pipeline().Params().Physics.Threshold; got != 0.123 {
		t.Errorf("threshold after reseed = %v, want 0.123", got)
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}
	if got := g.Pipeline().Params().Physics; got != edited {
		t.Errorf("physics after reseed step = %+v, want %+v", got, edited)
	}
}

func TestSetPhysicsRejectsOutOfRange(t *testing.T) {
	g := newHeadless(t, Options{Seed: 9})
	defer g.Unload()

	pp := g.Pipeline().Params().Physics
	bad := pp
	bad.Threshold = 2
	g.setPhysics(bad)
	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}
	if got := g.Pipeline().Params().Physics.Threshold; got != pp.Threshold {
		t.Errorf("threshold = %v, want unchanged %v", got, pp.Threshold)
	}

	good := pp
	good.Mode = ui.NextMode(pp.Mode)
	g.setPhysics(good)
	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless: %v", err)
	}
	if got := g.Pipeline().Params().Physics.Mode; got != good.Mode {
		t.Errorf("mode = %v, want %v", got, good.Mode)
	}
}

func TestPaintOptionsFollowOverlays(t *testing.T) {
	reg := ui.NewOverlayRegistry()
	reg.Toggle(ui.OverlayJunctions)
	reg.Toggle(ui.OverlayBorders)

	opts := paintOptions(reg, 4)
	if !opts.Junctions || opts.Borders || opts.ShadeDistance {
		t.Errorf("paint options = %+v", opts)
	}
	if opts.JunctionOwners != 4 {
		t.Errorf("junction owners = %d, want 4", opts.JunctionOwners)
	}
}
