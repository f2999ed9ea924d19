package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds enough state to resume a run: the grid, the physics in
// force and the published seed store. The ownership field is recomputed by
// the first frame.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`

	Frame   uint64       `json:"frame"`
	Physics PhysicsState `json:"physics"`

	Seeds []SeedState `json:"seeds"`
}

// PhysicsState is the physics configuration a run was using.
type PhysicsState struct {
	Mode         string  `json:"mode"`
	Threshold    float32 `json:"threshold"`
	Damping      float32 `json:"damping"`
	MinRadius    float32 `json:"min_radius"`
	MaxRadius    float32 `json:"max_radius"`
	CentroidPull float32 `json:"centroid_pull"`
}

// SeedState holds one seed's complete state.
type SeedState struct {
	ID         int32      `json:"id"`
	Position   [3]float32 `json:"position"`
	Radius     float32    `json:"radius"`
	GrowthRate float32    `json:"growth_rate"`
	Momentum   float32    `json:"momentum"`
	Color      [3]float32 `json:"color"`
}

// NewSnapshot captures a seed store and the physics driving it.
func NewSnapshot(d systems.Dims, frame uint64, pp systems.PhysicsParams, rngSeed int64, seeds []systems.Seed) *Snapshot {
	s := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: rngSeed,
		Width:   d.W,
		Height:  d.H,
		Depth:   d.D,
		Frame:   frame,
		Physics: PhysicsState{
			Mode:         pp.Mode.String(),
			Threshold:    pp.Threshold,
			Damping:      pp.Damping,
			MinRadius:    pp.MinRadius,
			MaxRadius:    pp.MaxRadius,
			CentroidPull: pp.CentroidPull,
		},
		Seeds: make([]SeedState, len(seeds)),
	}
	for i, seed := range seeds {
		s.Seeds[i] = SeedState{
			ID:         seed.ID,
			Position:   seed.Position,
			Radius:     seed.Radius,
			GrowthRate: seed.GrowthRate,
			Momentum:   seed.Momentum,
			Color:      seed.Color,
		}
	}
	return s
}

// Dims returns the snapshot's grid dimensions.
func (s *Snapshot) Dims() systems.Dims {
	return systems.Dims{W: s.Width, H: s.Height, D: s.Depth}
}

// RestorePhysics returns the snapshot's physics parameters, validated.
func (s *Snapshot) RestorePhysics() (systems.PhysicsParams, error) {
	mode, err := systems.ParseMode(s.Physics.Mode)
	if err != nil {
		return systems.PhysicsParams{}, fmt.Errorf("snapshot physics: %w", err)
	}
	pp := systems.PhysicsParams{
		Mode:         mode,
		Threshold:    s.Physics.Threshold,
		Damping:      s.Physics.Damping,
		MinRadius:    s.Physics.MinRadius,
		MaxRadius:    s.Physics.MaxRadius,
		CentroidPull: s.Physics.CentroidPull,
	}
	if err := pp.Validate(); err != nil {
		return systems.PhysicsParams{}, fmt.Errorf("snapshot physics: %w", err)
	}
	return pp, nil
}

// RestoreSeeds rebuilds the seed store. Seeds are ordered by id and ids
// must be dense, matching the store's index-equals-id rule.
func (s *Snapshot) RestoreSeeds() ([]systems.Seed, error) {
	seeds := make([]systems.Seed, len(s.Seeds))
	seen := make([]bool, len(s.Seeds))
	for _, st := range s.Seeds {
		if st.ID < 0 || int(st.ID) >= len(seeds) || seen[st.ID] {
			return nil, fmt.Errorf("snapshot seed id %d invalid for %d seeds", st.ID, len(seeds))
		}
		seen[st.ID] = true
		seeds[st.ID] = systems.Seed{
			ID:         st.ID,
			Position:   mgl32.Vec3(st.Position),
			Radius:     st.Radius,
			GrowthRate: st.GrowthRate,
			Momentum:   st.Momentum,
			Color:      mgl32.Vec3(st.Color),
		}
	}
	return seeds, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Frame))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
