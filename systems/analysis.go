package systems

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultFixedPointScale converts centroid contributions to integers.
// Quantization error per contribution is bounded by 1/scale.
const DefaultFixedPointScale = 1024

// MinJunctionOwners is the smallest distinct-owner count that marks a junction.
const MinJunctionOwners = 3

// CellStats is the decoded per-seed result of the analysis stage.
type CellStats struct {
	VoxelCount    int64
	CentroidSum   [3]int64 // fixed-point, scaled by the accumulator scale
	Centroid      r3.Vec   // CentroidSum / scale / VoxelCount; zero when VoxelCount == 0
	AcuteCount    int64
	JunctionCount int64
}

// AcuteRatio returns AcuteCount/JunctionCount, or 0 with no junctions.
func (s CellStats) AcuteRatio() float32 {
	if s.JunctionCount == 0 {
		return 0
	}
	return float32(s.AcuteCount) / float32(s.JunctionCount)
}

// Occluded reports a seed that owns no cells this frame.
func (s CellStats) Occluded() bool { return s.VoxelCount == 0 }

// statSlot is one seed's accumulation slot. Every field is only ever
// modified by atomic integer addition, so the final values are exact sums
// independent of worker scheduling.
type statSlot struct {
	voxels    atomic.Int64
	sum       [3]atomic.Int64
	acute     atomic.Int64
	junctions atomic.Int64
}

// Accumulator holds the per-seed statistics slots written by analysis workers.
//
// Floating-point atomics are not available, so centroid contributions are
// converted to fixed-point integers before the atomic add. This trades a
// bounded quantization error of 1/scale per contribution for exact,
// order-independent sums.
type Accumulator struct {
	slots []statSlot
	scale float64
}

// NewAccumulator allocates slots for n seeds.
func NewAccumulator(n int, scale float64) *Accumulator {
	return &Accumulator{slots: make([]statSlot, n), scale: scale}
}

// Len returns the number of slots.
func (a *Accumulator) Len() int { return len(a.slots) }

// Reset zeroes every slot. Must not run concurrently with accumulation.
func (a *Accumulator) Reset() {
	for i := range a.slots {
		s := &a.slots[i]
		s.voxels.Store(0)
		s.sum[0].Store(0)
		s.sum[1].Store(0)
		s.sum[2].Store(0)
		s.acute.Store(0)
		s.junctions.Store(0)
	}
}

// ToFixed converts a value to the accumulator's fixed-point representation.
func (a *Accumulator) ToFixed(v float64) int64 {
	return int64(math.Round(v * a.scale))
}

// Decode copies the accumulated slots into dst, recovering float centroids.
// dst must have Len() entries.
func (a *Accumulator) Decode(dst []CellStats) {
	for i := range a.slots {
		s := &a.slots[i]
		cs := CellStats{
			VoxelCount:    s.voxels.Load(),
			CentroidSum:   [3]int64{s.sum[0].Load(), s.sum[1].Load(), s.sum[2].Load()},
			AcuteCount:    s.acute.Load(),
			JunctionCount: s.junctions.Load(),
		}
		if cs.VoxelCount > 0 {
			div := a.scale * float64(cs.VoxelCount)
			cs.Centroid = r3.Vec{
				X: float64(cs.CentroidSum[0]) / div,
				Y: float64(cs.CentroidSum[1]) / div,
				Z: float64(cs.CentroidSum[2]) / div,
			}
		}
		dst[i] = cs
	}
}

// FixedPointSafe reports whether summing every cell's fixed-point coordinate
// into a single slot stays below the int64 range. The worst case is one seed
// owning the whole grid with every coordinate at the far edge.
func FixedPointSafe(d Dims, scale float64) bool {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return false
	}
	worst := float64(d.Cells()) * float64(d.MaxAxis()) * scale
	return worst < math.MaxInt64/2
}

// Analysis derives per-seed statistics from a converged ownership field.
type Analysis struct {
	dims      Dims
	minOwners int

	// Fixed-point cell-center coordinates per axis, precomputed once.
	fx, fy, fz []int64
}

// NewAnalysis creates an analysis stage. minOwners below MinJunctionOwners
// is raised to it.
func NewAnalysis(d Dims, minOwners int, acc *Accumulator) *Analysis {
	a := &Analysis{
		dims:      d,
		minOwners: max(minOwners, MinJunctionOwners),
		fx:        make([]int64, d.W),
		fy:        make([]int64, d.H),
		fz:        make([]int64, d.D),
	}
	for i := range a.fx {
		a.fx[i] = acc.ToFixed(float64(cellCenter(i)))
	}
	for i := range a.fy {
		a.fy[i] = acc.ToFixed(float64(cellCenter(i)))
	}
	for i := range a.fz {
		a.fz[i] = acc.ToFixed(float64(cellCenter(i)))
	}
	return a
}

// Kernel returns the per-cell analysis kernel bound to a field and seeds.
func (a *Analysis) Kernel(f *Field, seeds []Seed, acc *Accumulator) (Kernel, error) {
	if f.Dims != a.dims {
		return nil, fmt.Errorf("analysis: field dims %v do not match grid %v", f.Dims, a.dims)
	}
	if acc.Len() != len(seeds) {
		return nil, fmt.Errorf("analysis: %d slots for %d seeds", acc.Len(), len(seeds))
	}
	return func(start, end int) {
		a.process(f, seeds, acc, start, end)
	}, nil
}

func (a *Analysis) process(f *Field, seeds []Seed, acc *Accumulator, start, end int) {
	d := a.dims
	var block [8]int32

	for i := start; i < end; i++ {
		x, y, z := d.Coord(i)

		if o := f.Owner[i]; o != Unassigned {
			slot := &acc.slots[o]
			slot.voxels.Add(1)
			slot.sum[0].Add(a.fx[x])
			slot.sum[1].Add(a.fy[y])
			slot.sum[2].Add(a.fz[z])
		}

		// The 2x2x2 block anchored here needs a neighbor on every axis.
		if x+1 >= d.W || y+1 >= d.H || z+1 >= d.D {
			continue
		}

		n := 0
		for dz := 0; dz <= 1; dz++ {
			for dy := 0; dy <= 1; dy++ {
				for dx := 0; dx <= 1; dx++ {
					n = insertDistinct(&block, n, f.Owner[d.Index(x+dx, y+dy, z+dz)])
				}
			}
		}
		if n < a.minOwners {
			continue
		}
		a.classify(block[:n], seeds, acc)
	}
}

// classify credits one junction to every owner meeting in it. For owner a
// the angle is taken at a's seed between the directions to the two
// lowest-id other owners. owners is sorted ascending.
func (a *Analysis) classify(owners []int32, seeds []Seed, acc *Accumulator) {
	for k, id := range owners {
		b, c := otherTwo(owners, k)
		acute := junctionAcute(seeds[id].Position, seeds[b].Position, seeds[c].Position)

		slot := &acc.slots[id]
		slot.junctions.Add(1)
		slot.acute.Add(acute)
	}
}

// junctionAcute returns 1 when the angle at p between q and r is below 90
// degrees and 0 otherwise. Coincident seeds make the cosine NaN, which
// compares false and therefore counts as obtuse.
func junctionAcute(p, q, r mgl32.Vec3) int64 {
	cos := r3.Cos(r3.Sub(vec(q), vec(p)), r3.Sub(vec(r), vec(p)))
	if cos > 0 {
		return 1
	}
	return 0
}

func vec(p mgl32.Vec3) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// otherTwo returns the first two owners other than owners[k].
func otherTwo(owners []int32, k int) (int32, int32) {
	switch k {
	case 0:
		return owners[1], owners[2]
	case 1:
		return owners[0], owners[2]
	default:
		return owners[0], owners[1]
	}
}

// insertDistinct inserts id into the sorted prefix block[:n] if it is a new
// assigned owner, returning the new length.
func insertDistinct(block *[8]int32, n int, id int32) int {
	if id == Unassigned {
		return n
	}
	pos := n
	for pos > 0 && block[pos-1] > id {
		pos--
	}
	if pos > 0 && block[pos-1] == id {
		return n
	}
	copy(block[pos+1:n+1], block[pos:n])
	block[pos] = id
	return n + 1
}
