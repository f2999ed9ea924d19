package pipeline

import (
	"fmt"
	"math"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// Params is the context object passed to every stage: grid dimensions,
// physics configuration and compute settings. Changing the grid or seed
// count requires Reconfigure.
type Params struct {
	Dims    systems.Dims
	Physics systems.PhysicsParams
	JFA     systems.JFAOptions

	JunctionMinOwners int
	FixedPointScale   float64

	Workers   int // 0 = GOMAXPROCS
	BatchSize int // 0 = systems.DefaultBatchSize
	MaxCells  int // 0 = unlimited
}

// ParamsFromConfig builds Params from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	mode, err := systems.ParseMode(cfg.Physics.Mode)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrParamRange, err)
	}
	return Params{
		Dims: systems.Dims{W: cfg.Grid.Width, H: cfg.Grid.Height, D: cfg.Grid.Depth},
		Physics: systems.PhysicsParams{
			Mode:         mode,
			Threshold:    float32(cfg.Physics.Threshold),
			Damping:      float32(cfg.Physics.Damping),
			MinRadius:    float32(cfg.Physics.MinRadius),
			MaxRadius:    float32(cfg.Physics.MaxRadius),
			CentroidPull: float32(cfg.Physics.CentroidPull),
		},
		JFA: systems.JFAOptions{
			RefinePasses: cfg.JFA.RefinePasses,
			RadiusWeight: float32(cfg.JFA.RadiusWeight),
		},
		JunctionMinOwners: cfg.Analysis.JunctionMinOwners,
		FixedPointScale:   cfg.Analysis.FixedPointScale,
		Workers:           cfg.Compute.Workers,
		BatchSize:         cfg.Compute.BatchSize,
		MaxCells:          cfg.Compute.MaxCells,
	}, nil
}

// SeedOptionsFromConfig maps the seeds section onto systems.SeedOptions.
func SeedOptionsFromConfig(cfg *config.Config) systems.SeedOptions {
	return systems.SeedOptions{
		Count:         cfg.Seeds.Count,
		InitialRadius: float32(cfg.Seeds.InitialRadius),
		RadiusJitter:  float32(cfg.Seeds.RadiusJitter),
		GrowthRate:    float32(cfg.Seeds.GrowthRate),
		GrowthJitter:  float32(cfg.Seeds.GrowthJitter),
	}
}

// Validate checks the parameters against a seed store. It covers every
// configuration error that must be rejected before buffers are touched.
func (p Params) Validate(seeds []systems.Seed) error {
	if !p.Dims.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidGrid, p.Dims)
	}
	if p.MaxCells > 0 && p.Dims.Cells() > p.MaxCells {
		return fmt.Errorf("%w: %v is %d cells, cap is %d", ErrAllocation, p.Dims, p.Dims.Cells(), p.MaxCells)
	}
	if len(seeds) == 0 {
		return ErrNoSeeds
	}
	if len(seeds) > math.MaxInt32 {
		return fmt.Errorf("%w: %d seeds exceed id range", ErrParamRange, len(seeds))
	}
	if err := p.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrParamRange, err)
	}
	if p.JunctionMinOwners < systems.MinJunctionOwners || p.JunctionMinOwners > 8 {
		return fmt.Errorf("%w: junction_min_owners %d outside [%d,8]",
			ErrParamRange, p.JunctionMinOwners, systems.MinJunctionOwners)
	}
	if p.JFA.RefinePasses < 0 {
		return fmt.Errorf("%w: refine_passes %d", ErrParamRange, p.JFA.RefinePasses)
	}
	if !(p.JFA.RadiusWeight >= 0) {
		return fmt.Errorf("%w: radius_weight %v", ErrParamRange, p.JFA.RadiusWeight)
	}
	if p.Workers < 0 || p.BatchSize < 0 {
		return fmt.Errorf("%w: workers %d batch_size %d", ErrParamRange, p.Workers, p.BatchSize)
	}
	if !systems.FixedPointSafe(p.Dims, p.FixedPointScale) {
		return fmt.Errorf("%w: scale %v on %v", ErrFixedPointOverflow, p.FixedPointScale, p.Dims)
	}

	for i := range seeds {
		s := &seeds[i]
		if s.ID != int32(i) {
			return fmt.Errorf("%w: seed at index %d has id %d", ErrParamRange, i, s.ID)
		}
		for _, v := range s.Position {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return fmt.Errorf("%w: seed %d position %v", ErrParamRange, i, s.Position)
			}
		}
		if !(s.Radius >= 0) {
			return fmt.Errorf("%w: seed %d radius %v", ErrParamRange, i, s.Radius)
		}
	}
	return nil
}
