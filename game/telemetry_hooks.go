package game

import (
	"log/slog"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/telemetry"
)

// flushTelemetry records frame stats and handles bookmarks.
func (g *Game) flushTelemetry() {
	frame := g.Frame()
	params := g.pipe.Params()

	stats := telemetry.ComputeFrameStats(frame, g.pipe.Seeds(), g.pipe.Stats(), params.Dims.Cells())
	stats.FrameMS = float64(g.lastResult.Duration.Microseconds()) / 1000
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, frame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot()
		}
	}
}

// writeSeeds appends one row per seed to seeds.csv.
func (g *Game) writeSeeds() {
	if g.outputManager == nil {
		return
	}
	records := telemetry.SeedRecords(g.Frame(), g.pipe.Seeds(), g.pipe.Stats())
	if err := g.outputManager.WriteSeeds(records); err != nil {
		slog.Error("failed to write seeds", "error", err)
	}
}

// resetTelemetry starts bookmark detection over after a reconfiguration.
func (g *Game) resetTelemetry() {
	g.bookmarkDetector = telemetry.NewBookmarkDetector(16)
	g.lastStats = telemetry.FrameStats{}
}

// saveSnapshot writes the published seed store to the snapshot directory.
func (g *Game) saveSnapshot() {
	params := g.pipe.Params()
	snapshot := telemetry.NewSnapshot(params.Dims, g.Frame(), g.physics, g.rngSeed, g.pipe.Seeds())

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "frame", snapshot.Frame)
}
