// Package components defines the ECS components describing a seed for
// renderer and UI consumers.
package components

// SeedRef ties an entity back to its seed id in the pipeline's seed store.
type SeedRef struct {
	ID int32
}

// Position is a seed's generator point in grid units.
type Position struct {
	X, Y, Z float32
}

// Body holds the seed's radius.
type Body struct {
	Radius float32
}

// Growth holds the per-seed physics state.
type Growth struct {
	Rate     float32
	Momentum float32
}

// Tint is the display color of a seed's cell, components in [0,1].
type Tint struct {
	R, G, B float32
}

// Cell mirrors the decoded statistics of a seed's cell.
type Cell struct {
	Voxels     int64
	Junctions  int64
	Acute      int64
	AcuteRatio float32
	Centroid   [3]float32
}

// Occluded reports whether the seed owns no cells.
func (c Cell) Occluded() bool {
	return c.Voxels == 0
}
