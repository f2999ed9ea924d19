package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEquilibrium    BookmarkType = "equilibrium"
	BookmarkOcclusionSurge BookmarkType = "occlusion_surge"
	BookmarkCoverageGap    BookmarkType = "coverage_gap"
	BookmarkRadiusPinned   BookmarkType = "radius_pinned"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       uint64       `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// stableRecords is how many consecutive quiet records mark an equilibrium.
const stableRecords = 5

// BookmarkDetector flags notable frames in the stats stream.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameStats
	historySize int
	historyIdx  int
	historyFull bool

	stableCount  int
	gapReported  bool
	pinnedActive bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableRecords {
		historySize = stableRecords
	}
	return &BookmarkDetector{
		history:     make([]FrameStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCoverageGap(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkOcclusionSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkEquilibrium(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRadiusPinned(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FrameStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FrameStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// last returns the most recent record in history.
func (bd *BookmarkDetector) last() (FrameStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return FrameStats{}, false
	}
	i := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[i], true
}

// checkCoverageGap fires once when a frame leaves cells unassigned.
func (bd *BookmarkDetector) checkCoverageGap(stats FrameStats) *Bookmark {
	if stats.Coverage >= 1 || bd.gapReported {
		return nil
	}
	bd.gapReported = true
	return &Bookmark{
		Type:        BookmarkCoverageGap,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("Only %.4f of %d cells assigned", stats.Coverage, stats.Cells),
	}
}

// checkOcclusionSurge fires when the occluded seed count jumps by at least
// 10% of all seeds since the previous record.
func (bd *BookmarkDetector) checkOcclusionSurge(stats FrameStats) *Bookmark {
	prev, ok := bd.last()
	if !ok || stats.Seeds == 0 {
		return nil
	}
	delta := stats.Occluded - prev.Occluded
	if delta >= 2 && float64(delta) >= 0.1*float64(stats.Seeds) {
		return &Bookmark{
			Type:        BookmarkOcclusionSurge,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Occluded seeds rose from %d to %d", prev.Occluded, stats.Occluded),
		}
	}
	return nil
}

// checkEquilibrium fires once the volume distribution has held steady and
// mean momentum has settled for stableRecords consecutive records.
func (bd *BookmarkDetector) checkEquilibrium(stats FrameStats) *Bookmark {
	prev, ok := bd.last()
	if !ok {
		return nil
	}

	quiet := math.Abs(stats.VolumeCV-prev.VolumeCV) < 0.01 &&
		math.Abs(stats.MomentumMean) < 1e-3
	if quiet {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableRecords {
		return &Bookmark{
			Type:        BookmarkEquilibrium,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Volume CV %.3f steady over %d records", stats.VolumeCV, stableRecords),
		}
	}
	return nil
}

// checkRadiusPinned fires when every seed shares one radius, which happens
// when the physics clamps have saturated the whole population.
func (bd *BookmarkDetector) checkRadiusPinned(stats FrameStats) *Bookmark {
	pinned := stats.Seeds > 1 && stats.RadiusMin == stats.RadiusMax && len(bd.getHistory()) > 0
	if !pinned {
		bd.pinnedActive = false
		return nil
	}
	if bd.pinnedActive {
		return nil
	}
	bd.pinnedActive = true
	return &Bookmark{
		Type:        BookmarkRadiusPinned,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("All %d seeds pinned at radius %.3f", stats.Seeds, stats.RadiusMin),
	}
}
