package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output frame stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	resume := flag.String("resume", "", "Resume from a snapshot file")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Frames per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// A resumed run keeps the snapshot's seed unless one is given
	rngSeed := *seed
	if rngSeed == 0 && *resume == "" {
		rngSeed = cfg.Seeds.RNGSeed
		if rngSeed == 0 {
			rngSeed = time.Now().UnixNano()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Context:        ctx,
		Seed:           rngSeed,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		ResumePath:     *resume,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		os.Exit(runHeadless(opts, *maxFrames))
	}
	os.Exit(runViewer(cfg, opts, *maxFrames))
}

// runHeadless steps the pipeline without raylib until max frames or a signal.
func runHeadless(opts game.Options, maxFrames int) int {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"max_frames", maxFrames,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		if err := g.UpdateHeadless(); err != nil {
			if game.IsCancelled(err) {
				slog.Info("interrupted", "frame", g.Frame())
				return 0
			}
			slog.Error("frame failed", "frame", g.Frame(), "error", err)
			return 1
		}
		if maxFrames > 0 && g.Frame() >= uint64(maxFrames) {
			slog.Info("max frames reached", "frame", g.Frame())
			return 0
		}
	}
}

// runViewer opens the slice viewer window and drives it until closed.
func runViewer(cfg *config.Config, opts game.Options, maxFrames int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Voronoi Foam")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			if game.IsCancelled(err) {
				return 0
			}
			slog.Error("frame failed", "frame", g.Frame(), "error", err)
			return 1
		}
		g.Draw()

		if maxFrames > 0 && g.Frame() >= uint64(maxFrames) {
			break
		}
	}
	return 0
}
