package systems

import (
	"context"
	"fmt"
	"math"
)

// jfaOffsets are the 26 neighbor directions {-1,0,1}^3 minus the origin.
var jfaOffsets = func() [26][3]int {
	var out [26][3]int
	n := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out[n] = [3]int{dx, dy, dz}
				n++
			}
		}
	}
	return out
}()

// JFAOptions tunes the jump-flood stage.
type JFAOptions struct {
	// RefinePasses appends extra step-1 passes after the classic sequence.
	RefinePasses int
	// RadiusWeight scales the radius term of the power distance
	// |c-s|^2 - w*r^2. Zero gives the plain Euclidean diagram.
	RadiusWeight float32
}

// StepSizes returns the jump-flood step sequence for a grid: 2^k down to 1,
// where 2^k is the smallest power of two >= max(W,H,D)/2, followed by any
// refinement passes.
func StepSizes(d Dims, refinePasses int) []int {
	half := (d.MaxAxis() + 1) / 2
	step := 1
	for step < half {
		step <<= 1
	}

	var steps []int
	for ; step >= 1; step >>= 1 {
		steps = append(steps, step)
	}
	for i := 0; i < refinePasses; i++ {
		steps = append(steps, 1)
	}
	return steps
}

// JFA computes an approximate nearest-seed ownership field by jump flooding.
type JFA struct {
	dims  Dims
	opts  JFAOptions
	steps []int

	// siblings[id] lists every seed sharing id's home cell, id included.
	// nil when the seed is alone in its cell. Rebuilt by Initialize.
	siblings [][]int32
}

// NewJFA creates a jump-flood stage for the given grid.
func NewJFA(d Dims, opts JFAOptions) *JFA {
	return &JFA{
		dims:  d,
		opts:  opts,
		steps: StepSizes(d, opts.RefinePasses),
	}
}

// Steps returns the pass sequence this stage runs.
func (j *JFA) Steps() []int { return j.steps }

// Run floods the field. a and b are the two ping-pong buffers; the returned
// field is whichever of them holds the final pass. Each pass is a separate
// dispatch, so pass N+1 only ever reads pass N's completed writes.
func (j *JFA) Run(ctx context.Context, disp *Dispatcher, a, b *Field, seeds []Seed) (*Field, error) {
	if a.Dims != j.dims || b.Dims != j.dims {
		return nil, fmt.Errorf("jfa: buffer dims %v/%v do not match grid %v", a.Dims, b.Dims, j.dims)
	}

	j.Initialize(a, seeds)

	src, dst := a, b
	for _, step := range j.steps {
		kernel := func(start, end int) {
			j.Pass(dst, src, seeds, step, start, end)
		}
		if err := disp.Dispatch(ctx, j.dims.Cells(), kernel); err != nil {
			return nil, err
		}
		src, dst = dst, src
	}
	return src, nil
}

// Initialize clears the field and stamps each seed into its containing cell.
// When several seeds share a cell, the closest one wins and exact ties go to
// the lower id. The others are recorded as its siblings, and every pass that
// samples one member of the group scores the whole group, so a seed hidden
// in a shared cell still floods its own region.
func (j *JFA) Initialize(f *Field, seeds []Seed) {
	f.Reset()

	if cap(j.siblings) < len(seeds) {
		j.siblings = make([][]int32, len(seeds))
	}
	j.siblings = j.siblings[:len(seeds)]
	clear(j.siblings)

	home := make(map[int][]int32, len(seeds))
	best := make(map[int]float32, len(seeds))
	for i := range seeds {
		s := &seeds[i]
		cx, cy, cz := j.dims.CellOf(s.Position[0], s.Position[1], s.Position[2])
		idx := j.dims.Index(cx, cy, cz)
		key := j.key(cx, cy, cz, s)
		home[idx] = append(home[idx], s.ID)

		cur, taken := best[idx]
		if taken && (key > cur || (key == cur && s.ID > f.Owner[idx])) {
			continue
		}
		best[idx] = key
		f.Owner[idx] = s.ID
		f.Dist[idx] = j.dist(cx, cy, cz, s)
	}

	for _, group := range home {
		if len(group) < 2 {
			continue
		}
		for _, id := range group {
			j.siblings[id] = group
		}
	}
}

// Pass runs one jump-flood step over cells [start, end), reading src and
// writing dst. Every cell in the range is fully written.
func (j *JFA) Pass(dst, src *Field, seeds []Seed, step, start, end int) {
	d := j.dims
	for i := start; i < end; i++ {
		x, y, z := d.Coord(i)

		bestID := src.Owner[i]
		bestKey := float32(math.Inf(1))
		if bestID != Unassigned {
			bestKey = j.key(x, y, z, &seeds[bestID])
			bestID, bestKey = j.scoreSiblings(x, y, z, seeds, bestID, bestID, bestKey)
		}

		for _, off := range jfaOffsets {
			nx, ny, nz := x+off[0]*step, y+off[1]*step, z+off[2]*step
			if !d.Contains(nx, ny, nz) {
				continue
			}
			cand := src.Owner[d.Index(nx, ny, nz)]
			if cand == Unassigned || cand == bestID {
				continue
			}
			k := j.key(x, y, z, &seeds[cand])
			if k < bestKey || (k == bestKey && cand < bestID) {
				bestKey = k
				bestID = cand
			}
			bestID, bestKey = j.scoreSiblings(x, y, z, seeds, cand, bestID, bestKey)
		}

		dst.Owner[i] = bestID
		if bestID == Unassigned {
			dst.Dist[i] = float32(math.Inf(1))
		} else {
			dst.Dist[i] = j.dist(x, y, z, &seeds[bestID])
		}
	}
}

// scoreSiblings offers every seed sharing cand's home cell to the running
// best for cell (x, y, z).
func (j *JFA) scoreSiblings(x, y, z int, seeds []Seed, cand, bestID int32, bestKey float32) (int32, float32) {
	if int(cand) >= len(j.siblings) {
		return bestID, bestKey
	}
	for _, id := range j.siblings[cand] {
		if id == cand || id == bestID {
			continue
		}
		k := j.key(x, y, z, &seeds[id])
		if k < bestKey || (k == bestKey && id < bestID) {
			bestKey = k
			bestID = id
		}
	}
	return bestID, bestKey
}

// key is the comparison metric between a cell center and a seed.
func (j *JFA) key(x, y, z int, s *Seed) float32 {
	d2 := dist2(x, y, z, s)
	if j.opts.RadiusWeight != 0 {
		d2 -= j.opts.RadiusWeight * s.Radius * s.Radius
	}
	return d2
}

func (j *JFA) dist(x, y, z int, s *Seed) float32 {
	return float32(math.Sqrt(float64(dist2(x, y, z, s))))
}

func dist2(x, y, z int, s *Seed) float32 {
	dx := cellCenter(x) - s.Position[0]
	dy := cellCenter(y) - s.Position[1]
	dz := cellCenter(z) - s.Position[2]
	return dx*dx + dy*dy + dz*dz
}
