package pipeline

import (
	"fmt"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// arena owns every grid- and seed-sized buffer. Roles are tracked by slot
// index rather than by aliasing pointers:
//
//   - fields: three slots. One is published (front); the other two are the
//     JFA ping-pong pair for the frame in progress, so a cancelled frame
//     never touches the published field.
//   - seeds and stats: two slots each, front (published) and back (being
//     written this frame).
//
// Indices only change in commit, after a frame has fully completed.
type arena struct {
	dims systems.Dims

	fields     [3]*systems.Field
	frontField int

	seeds      [2][]systems.Seed
	frontSeeds int

	stats      [2][]systems.CellStats
	frontStats int

	acc *systems.Accumulator
}

// newArena allocates all buffers for a grid and seed store. Allocation
// panics (oversized requests) are reported as ErrAllocation.
func newArena(d systems.Dims, seeds []systems.Seed, scale float64) (a *arena, err error) {
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("%w: %v: %v", ErrAllocation, d, r)
		}
	}()

	a = &arena{dims: d}
	for i := range a.fields {
		a.fields[i] = systems.NewField(d)
	}
	a.seeds[0] = systems.CloneSeeds(seeds)
	a.seeds[1] = make([]systems.Seed, len(seeds))
	for i := range a.stats {
		a.stats[i] = make([]systems.CellStats, len(seeds))
	}
	a.acc = systems.NewAccumulator(len(seeds), scale)
	return a, nil
}

// workFields returns the two field slots not currently published.
func (a *arena) workFields() (*systems.Field, *systems.Field) {
	i := (a.frontField + 1) % len(a.fields)
	j := (a.frontField + 2) % len(a.fields)
	return a.fields[i], a.fields[j]
}

func (a *arena) field() *systems.Field { return a.fields[a.frontField] }
func (a *arena) frontSeedSlice() []systems.Seed { return a.seeds[a.frontSeeds] }
func (a *arena) backSeedSlice() []systems.Seed { return a.seeds[1-a.frontSeeds] }
func (a *arena) frontStatSlice() []systems.CellStats { return a.stats[a.frontStats] }
func (a *arena) backStatSlice() []systems.CellStats { return a.stats[1-a.frontStats] }

// commit publishes the frame's results: result becomes the front field and
// the back seed/stat slots become front.
func (a *arena) commit(result *systems.Field) {
	for i, f := range a.fields {
		if f == result {
			a.frontField = i
			break
		}
	}
	a.frontSeeds = 1 - a.frontSeeds
	a.frontStats = 1 - a.frontStats
}
