// Package scene mirrors the pipeline's published seed store and statistics
// into an ECS world that the viewer queries.
package scene

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/components"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// View is a copy of one seed entity's components.
type View struct {
	Ref    components.SeedRef
	Pos    components.Position
	Body   components.Body
	Growth components.Growth
	Tint   components.Tint
	Cell   components.Cell
}

// Marker is a seed's footprint on a z-slice.
type Marker struct {
	ID     int32
	X, Y   float32
	Radius float32 // radius of the seed sphere's cross-section at the slice
	Tint   components.Tint

	// Centroid of the seed's cell projected onto the slice; zero when occluded.
	CentroidX, CentroidY float32
	Occluded             bool
}

// Scene holds one entity per seed, indexed by seed id.
type Scene struct {
	world *ecs.World

	mapper *ecs.Map6[
		components.SeedRef,
		components.Position,
		components.Body,
		components.Growth,
		components.Tint,
		components.Cell,
	]
	filter *ecs.Filter6[
		components.SeedRef,
		components.Position,
		components.Body,
		components.Growth,
		components.Tint,
		components.Cell,
	]

	posMap    *ecs.Map1[components.Position]
	bodyMap   *ecs.Map1[components.Body]
	growthMap *ecs.Map1[components.Growth]
	cellMap   *ecs.Map1[components.Cell]
	tintMap   *ecs.Map1[components.Tint]

	entities []ecs.Entity
	frame    uint64
}

// New creates an empty scene.
func New() *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world: world,
		mapper: ecs.NewMap6[
			components.SeedRef,
			components.Position,
			components.Body,
			components.Growth,
			components.Tint,
			components.Cell,
		](world),
		filter: ecs.NewFilter6[
			components.SeedRef,
			components.Position,
			components.Body,
			components.Growth,
			components.Tint,
			components.Cell,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		bodyMap:   ecs.NewMap1[components.Body](world),
		growthMap: ecs.NewMap1[components.Growth](world),
		cellMap:   ecs.NewMap1[components.Cell](world),
		tintMap:   ecs.NewMap1[components.Tint](world),
	}
}

// Len returns the number of seed entities.
func (s *Scene) Len() int {
	return len(s.entities)
}

// Frame returns the frame number of the last sync.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// Sync updates the mirror from a published frame. When the seed count has
// changed (after a reconfiguration) the world is rebuilt.
func (s *Scene) Sync(frame uint64, seeds []systems.Seed, stats []systems.CellStats) {
	if len(seeds) != len(s.entities) {
		s.Rebuild(frame, seeds, stats)
		return
	}

	for i, e := range s.entities {
		seed := &seeds[i]
		*s.posMap.Get(e) = position(seed)
		s.bodyMap.Get(e).Radius = seed.Radius
		*s.growthMap.Get(e) = components.Growth{Rate: seed.GrowthRate, Momentum: seed.Momentum}
		*s.tintMap.Get(e) = tint(seed)
		*s.cellMap.Get(e) = cell(stats, i)
	}
	s.frame = frame
}

// Rebuild discards every entity and recreates one per seed.
func (s *Scene) Rebuild(frame uint64, seeds []systems.Seed, stats []systems.CellStats) {
	for _, e := range s.entities {
		s.world.RemoveEntity(e)
	}
	s.entities = s.entities[:0]

	for i := range seeds {
		seed := &seeds[i]
		ref := components.SeedRef{ID: seed.ID}
		pos := position(seed)
		body := components.Body{Radius: seed.Radius}
		growth := components.Growth{Rate: seed.GrowthRate, Momentum: seed.Momentum}
		t := tint(seed)
		c := cell(stats, i)
		s.entities = append(s.entities, s.mapper.NewEntity(&ref, &pos, &body, &growth, &t, &c))
	}
	s.frame = frame
}

// Lookup returns the components of the seed with the given id.
func (s *Scene) Lookup(id int32) (View, bool) {
	if id < 0 || int(id) >= len(s.entities) {
		return View{}, false
	}
	e := s.entities[id]
	if !s.world.Alive(e) {
		return View{}, false
	}
	return View{
		Ref:    components.SeedRef{ID: id},
		Pos:    *s.posMap.Get(e),
		Body:   *s.bodyMap.Get(e),
		Growth: *s.growthMap.Get(e),
		Tint:   *s.tintMap.Get(e),
		Cell:   *s.cellMap.Get(e),
	}, true
}

// SliceMarkers returns the seeds whose sphere intersects the plane through
// cell-center z, ordered by id. Seeds with zero radius are included when
// their generator point lies within half a cell of the plane.
func (s *Scene) SliceMarkers(z int) []Marker {
	plane := float32(z) + 0.5
	var markers []Marker

	query := s.filter.Query()
	for query.Next() {
		ref, pos, body, _, t, c := query.Get()
		dz := float32(math.Abs(float64(pos.Z - plane)))
		reach := max(body.Radius, 0.5)
		if dz > reach {
			continue
		}
		r := float32(math.Sqrt(float64(reach*reach - dz*dz)))
		markers = append(markers, Marker{
			ID:        ref.ID,
			X:         pos.X,
			Y:         pos.Y,
			Radius:    r,
			Tint:      *t,
			CentroidX: c.Centroid[0],
			CentroidY: c.Centroid[1],
			Occluded:  c.Occluded(),
		})
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].ID < markers[j].ID })
	return markers
}

// Largest returns up to n seeds ordered by cell volume, largest first.
// Ties are ordered by id.
func (s *Scene) Largest(n int) []View {
	var views []View

	query := s.filter.Query()
	for query.Next() {
		ref, pos, body, growth, t, c := query.Get()
		views = append(views, View{Ref: *ref, Pos: *pos, Body: *body, Growth: *growth, Tint: *t, Cell: *c})
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].Cell.Voxels != views[j].Cell.Voxels {
			return views[i].Cell.Voxels > views[j].Cell.Voxels
		}
		return views[i].Ref.ID < views[j].Ref.ID
	})
	if len(views) > n {
		views = views[:n]
	}
	return views
}

// Occluded returns the ids of seeds that own no cells, in id order.
func (s *Scene) Occluded() []int32 {
	var ids []int32
	query := s.filter.Query()
	for query.Next() {
		ref, _, _, _, _, c := query.Get()
		if c.Occluded() {
			ids = append(ids, ref.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func position(seed *systems.Seed) components.Position {
	return components.Position{X: seed.Position.X(), Y: seed.Position.Y(), Z: seed.Position.Z()}
}

func tint(seed *systems.Seed) components.Tint {
	return components.Tint{R: seed.Color.X(), G: seed.Color.Y(), B: seed.Color.Z()}
}

func cell(stats []systems.CellStats, i int) components.Cell {
	if i >= len(stats) {
		return components.Cell{}
	}
	st := stats[i]
	return components.Cell{
		Voxels:     st.VoxelCount,
		Junctions:  st.JunctionCount,
		Acute:      st.AcuteCount,
		AcuteRatio: st.AcuteRatio(),
		Centroid:   [3]float32{float32(st.Centroid.X), float32(st.Centroid.Y), float32(st.Centroid.Z)},
	}
}
