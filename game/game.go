// Package game drives the pipeline frame by frame, in headless runs or
// behind the raylib slice viewer, and feeds telemetry.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/camera"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/pipeline"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/renderer"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/scene"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/telemetry"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/ui"
)

// Options configures a Game.
type Options struct {
	Context        context.Context // cancels in-flight frames; nil = Background
	Seed           int64           // RNG seed for seed placement (0 = config, then time-based by caller)
	LogStats       bool
	SnapshotDir    string // where bookmark and exit snapshots are written
	OutputDir      string // CSV logs and config copy
	ResumePath     string // snapshot to resume from
	Headless       bool
	StepsPerUpdate int
}

// Game owns the pipeline and everything that observes it.
type Game struct {
	ctx     context.Context
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	rng     *rand.Rand
	rngSeed int64

	// Frames completed before a resumed snapshot was taken. Pipeline frames
	// restart at zero after every reconfiguration.
	frameOffset uint64
	lastResult  pipeline.FrameResult
	lastStats   telemetry.FrameStats

	// Physics as last edited; staged in the pipeline until the next frame.
	physics systems.PhysicsParams

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	logStats         bool
	snapshotDir      string
	statsInterval    uint64
	seedInterval     uint64

	// Viewer state (unused when headless)
	headless       bool
	paused         bool
	stepsPerUpdate int
	scene          *scene.Scene
	camera         *camera.Camera
	slice          *renderer.SliceView
	z              int
	selected       int32
	screenWidth    float32
	screenHeight   float32

	uiOverlays  *ui.OverlayRegistry
	uiControls  *ui.ControlsPanel
	uiHUD       *ui.HUD
	uiPerfPanel *ui.PerfPanel
	uiInspector *ui.Inspector
}

// NewGameWithOptions builds the pipeline from the global config, or from a
// snapshot when opts.ResumePath is set. The viewer pieces are created only
// when not headless and require an open raylib window.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	capability := pipeline.DetectCapability(cfg.Compute.MinWorkers)
	if err := capability.Err(); err != nil {
		return nil, err
	}
	slog.Info("parallel compute available", "workers", capability.Workers, "min_workers", capability.MinWorkers)

	params, err := pipeline.ParamsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	g := &Game{
		ctx:              ctx,
		cfg:              cfg,
		rngSeed:          opts.Seed,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(16),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsInterval:    uint64(max(cfg.Telemetry.StatsInterval, 0)),
		seedInterval:     uint64(max(cfg.Telemetry.SeedSampleInterval, 0)),
		headless:         opts.Headless,
		stepsPerUpdate:   max(opts.StepsPerUpdate, 1),
		selected:         -1,
	}
	if g.rngSeed == 0 {
		g.rngSeed = cfg.Seeds.RNGSeed
	}

	var seeds []systems.Seed
	if opts.ResumePath != "" {
		snap, err := telemetry.LoadSnapshot(opts.ResumePath)
		if err != nil {
			return nil, err
		}
		if seeds, err = snap.RestoreSeeds(); err != nil {
			return nil, err
		}
		if params.Physics, err = snap.RestorePhysics(); err != nil {
			return nil, err
		}
		params.Dims = snap.Dims()
		g.frameOffset = snap.Frame
		if opts.Seed == 0 {
			g.rngSeed = snap.RNGSeed
		}
		slog.Info("resuming from snapshot", "path", opts.ResumePath, "frame", snap.Frame, "grid", params.Dims.String())
	}
	g.rng = rand.New(rand.NewSource(g.rngSeed))
	if seeds == nil {
		seeds = systems.RandomSeeds(params.Dims, pipeline.SeedOptionsFromConfig(cfg), g.rng)
	}

	g.pipe, err = pipeline.New(params, seeds, pipeline.WithRecorder(g.perfCollector))
	if err != nil {
		return nil, err
	}
	g.physics = params.Physics

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.pipe.Close()
		return nil, err
	}
	if g.outputManager != nil {
		if err := g.outputManager.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}

	if !g.headless {
		g.initViewer(params.Dims)
	}
	return g, nil
}

// initViewer creates the camera, slice texture and UI panels.
func (g *Game) initViewer(d systems.Dims) {
	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)

	g.scene = scene.New()
	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(d.W), float32(d.H))
	g.slice = renderer.NewSliceView()
	g.slice.Init(d.W, d.H)
	g.z = d.D / 2

	g.uiOverlays = ui.NewOverlayRegistry()
	g.uiControls = ui.NewControlsPanel(10, 10, 260)
	g.uiHUD = ui.NewHUD()
	g.uiPerfPanel = ui.NewPerfPanel(int32(g.screenWidth)-330, 150)
	g.uiInspector = ui.NewInspector()
}

// Frame returns the absolute frame number, counting frames before a resume.
func (g *Game) Frame() uint64 {
	return g.frameOffset + g.pipe.Frame()
}

// Pipeline exposes the underlying pipeline.
func (g *Game) Pipeline() *pipeline.Pipeline {
	return g.pipe
}

// LastStats returns the most recent frame statistics record.
func (g *Game) LastStats() telemetry.FrameStats {
	return g.lastStats
}

// Unload releases resources. A final snapshot is written when a snapshot
// directory is configured.
func (g *Game) Unload() {
	if g.snapshotDir != "" {
		g.saveSnapshot()
	}
	if g.slice != nil {
		g.slice.Unload()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
	g.pipe.Close()
}
