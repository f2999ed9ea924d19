package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
)

// csvStream is one append-only CSV file of T records. The header goes out
// with the first batch.
type csvStream[T any] struct {
	name    string
	file    *os.File
	started bool
}

func openStream[T any](dir, name string) (*csvStream[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvStream[T]{name: name, file: f}, nil
}

func (s *csvStream[T]) write(records []T) error {
	if len(records) == 0 {
		return nil
	}
	var err error
	if s.started {
		err = gocsv.MarshalWithoutHeaders(records, s.file)
	} else {
		err = gocsv.Marshal(records, s.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	s.started = true
	return nil
}

func (s *csvStream[T]) close() error {
	if s == nil {
		return nil
	}
	return s.file.Close()
}

// OutputManager writes a run's CSV streams and its config into one
// directory. A nil *OutputManager discards everything.
type OutputManager struct {
	dir       string
	frames    *csvStream[FrameStats]
	perf      *csvStream[PerfStatsCSV]
	seeds     *csvStream[SeedRecord]
	bookmarks *csvStream[Bookmark]
}

// NewOutputManager creates dir and opens telemetry.csv, perf.csv,
// seeds.csv and bookmarks.csv in it. Returns nil if dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.frames, err = openStream[FrameStats](dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openStream[PerfStatsCSV](dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.seeds, err = openStream[SeedRecord](dir, "seeds.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openStream[Bookmark](dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the run configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends one frame's stats to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats FrameStats) error {
	if om == nil {
		return nil
	}
	return om.frames.write([]FrameStats{stats})
}

// WritePerf appends the rolling phase timings at frame to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, frame uint64) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(frame)})
}

// WriteSeeds appends a seed sample to seeds.csv.
func (om *OutputManager) WriteSeeds(records []SeedRecord) error {
	if om == nil {
		return nil
	}
	return om.seeds.write(records)
}

// WriteBookmark appends a detected bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// Close closes every open stream and returns their errors joined.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.frames.close(),
		om.perf.close(),
		om.seeds.close(),
		om.bookmarks.close(),
	)
}
