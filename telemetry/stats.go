package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// FrameStats holds aggregated statistics for one published frame.
type FrameStats struct {
	Frame     uint64  `csv:"frame"`
	FrameMS   float64 `csv:"frame_ms"`
	Seeds     int     `csv:"seeds"`
	Cells     int     `csv:"cells"`
	Coverage  float64 `csv:"coverage"` // fraction of cells assigned
	Occluded  int     `csv:"occluded"`
	Junctions int64   `csv:"junctions"`

	// Cell volume distribution (voxels per live seed)
	VolumeMean float64 `csv:"volume_mean"`
	VolumeStd  float64 `csv:"volume_std"`
	VolumeCV   float64 `csv:"volume_cv"`
	VolumeP10  float64 `csv:"volume_p10"`
	VolumeP50  float64 `csv:"volume_p50"`
	VolumeP90  float64 `csv:"volume_p90"`

	// Acute ratio distribution over seeds with junctions
	AcuteMean float64 `csv:"acute_mean"`
	AcuteStd  float64 `csv:"acute_std"`

	// Radius and momentum
	RadiusMean   float64 `csv:"radius_mean"`
	RadiusMin    float64 `csv:"radius_min"`
	RadiusMax    float64 `csv:"radius_max"`
	MomentumMean float64 `csv:"momentum_mean"`
	Growing      int     `csv:"growing"`
	Shrinking    int     `csv:"shrinking"`
}

// SeedRecord is one per-seed row of seeds.csv.
type SeedRecord struct {
	Frame      uint64  `csv:"frame"`
	ID         int32   `csv:"id"`
	X          float32 `csv:"x"`
	Y          float32 `csv:"y"`
	Z          float32 `csv:"z"`
	Radius     float32 `csv:"radius"`
	Momentum   float32 `csv:"momentum"`
	Voxels     int64   `csv:"voxels"`
	Junctions  int64   `csv:"junctions"`
	AcuteRatio float32 `csv:"acute_ratio"`
}

// SeedRecords flattens the published seed store and statistics.
func SeedRecords(frame uint64, seeds []systems.Seed, cells []systems.CellStats) []SeedRecord {
	out := make([]SeedRecord, len(seeds))
	for i, s := range seeds {
		r := SeedRecord{
			Frame:    frame,
			ID:       s.ID,
			X:        s.Position.X(),
			Y:        s.Position.Y(),
			Z:        s.Position.Z(),
			Radius:   s.Radius,
			Momentum: s.Momentum,
		}
		if i < len(cells) {
			r.Voxels = cells[i].VoxelCount
			r.Junctions = cells[i].JunctionCount
			r.AcuteRatio = cells[i].AcuteRatio()
		}
		out[i] = r
	}
	return out
}

// ComputeFrameStats aggregates the published seed store and statistics.
// Occluded seeds are excluded from the volume and acute distributions.
func ComputeFrameStats(frame uint64, seeds []systems.Seed, cells []systems.CellStats, totalCells int) FrameStats {
	fs := FrameStats{
		Frame: frame,
		Seeds: len(seeds),
		Cells: totalCells,
	}

	volumes := make([]float64, 0, len(cells))
	var acute []float64
	var assigned int64
	for _, c := range cells {
		assigned += c.VoxelCount
		fs.Junctions += c.JunctionCount
		if c.Occluded() {
			fs.Occluded++
			continue
		}
		volumes = append(volumes, float64(c.VoxelCount))
		if c.JunctionCount > 0 {
			acute = append(acute, float64(c.AcuteRatio()))
		}
	}
	if totalCells > 0 {
		fs.Coverage = float64(assigned) / float64(totalCells)
	}

	if len(volumes) > 0 {
		fs.VolumeMean, fs.VolumeStd = stat.PopMeanStdDev(volumes, nil)
		if fs.VolumeMean > 0 {
			fs.VolumeCV = fs.VolumeStd / fs.VolumeMean
		}
		sort.Float64s(volumes)
		fs.VolumeP10 = stat.Quantile(0.10, stat.LinInterp, volumes, nil)
		fs.VolumeP50 = stat.Quantile(0.50, stat.LinInterp, volumes, nil)
		fs.VolumeP90 = stat.Quantile(0.90, stat.LinInterp, volumes, nil)
	}
	if len(acute) > 0 {
		fs.AcuteMean, fs.AcuteStd = stat.PopMeanStdDev(acute, nil)
	}

	if len(seeds) > 0 {
		radii := make([]float64, len(seeds))
		momenta := make([]float64, len(seeds))
		fs.RadiusMin = math.Inf(1)
		fs.RadiusMax = math.Inf(-1)
		for i, s := range seeds {
			radii[i] = float64(s.Radius)
			momenta[i] = float64(s.Momentum)
			fs.RadiusMin = math.Min(fs.RadiusMin, radii[i])
			fs.RadiusMax = math.Max(fs.RadiusMax, radii[i])
			switch {
			case s.Momentum > 0:
				fs.Growing++
			case s.Momentum < 0:
				fs.Shrinking++
			}
		}
		fs.RadiusMean = stat.Mean(radii, nil)
		fs.MomentumMean = stat.Mean(momenta, nil)
	}

	return fs
}

// VolumeCV returns the coefficient of variation of live cell volumes.
// Lower is more uniform. Returns 0 when fewer than two cells are live.
func VolumeCV(cells []systems.CellStats) float64 {
	volumes := make([]float64, 0, len(cells))
	for _, c := range cells {
		if !c.Occluded() {
			volumes = append(volumes, float64(c.VoxelCount))
		}
	}
	if len(volumes) < 2 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(volumes, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.Frame),
		slog.Float64("frame_ms", s.FrameMS),
		slog.Int("seeds", s.Seeds),
		slog.Int("cells", s.Cells),
		slog.Float64("coverage", s.Coverage),
		slog.Int("occluded", s.Occluded),
		slog.Int64("junctions", s.Junctions),
		slog.Float64("volume_mean", s.VolumeMean),
		slog.Float64("volume_cv", s.VolumeCV),
		slog.Float64("volume_p10", s.VolumeP10),
		slog.Float64("volume_p50", s.VolumeP50),
		slog.Float64("volume_p90", s.VolumeP90),
		slog.Float64("acute_mean", s.AcuteMean),
		slog.Float64("acute_std", s.AcuteStd),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_min", s.RadiusMin),
		slog.Float64("radius_max", s.RadiusMax),
		slog.Float64("momentum_mean", s.MomentumMean),
		slog.Int("growing", s.Growing),
		slog.Int("shrinking", s.Shrinking),
	)
}

// LogStats logs the frame stats using slog.
func (s FrameStats) LogStats() {
	slog.Info("stats",
		"frame", s.Frame,
		"frame_ms", s.FrameMS,
		"coverage", s.Coverage,
		"occluded", s.Occluded,
		"junctions", s.Junctions,
		"volume_mean", s.VolumeMean,
		"volume_cv", s.VolumeCV,
		"acute_mean", s.AcuteMean,
		"radius_mean", s.RadiusMean,
		"radius_min", s.RadiusMin,
		"radius_max", s.RadiusMax,
		"momentum_mean", s.MomentumMean,
		"growing", s.Growing,
		"shrinking", s.Shrinking,
	)
}
