// Package systems provides the data-parallel stages of the Voronoi pipeline:
// jump flooding, cell analysis and seed physics, plus the worker pool that
// dispatches them.
package systems

import (
	"fmt"
	"math"
)

// Unassigned marks a cell that has not been reached by any seed yet.
const Unassigned int32 = -1

// Dims is the size of the discretized grid in cells.
type Dims struct {
	W, H, D int
}

// Cells returns the total number of cells.
func (d Dims) Cells() int {
	return d.W * d.H * d.D
}

// MaxAxis returns the largest of the three dimensions.
func (d Dims) MaxAxis() int {
	return max(d.W, d.H, d.D)
}

// Valid reports whether every dimension is positive.
func (d Dims) Valid() bool {
	return d.W > 0 && d.H > 0 && d.D > 0
}

// Index flattens a cell coordinate. x varies fastest.
func (d Dims) Index(x, y, z int) int {
	return (z*d.H+y)*d.W + x
}

// Coord expands a flat index back into a cell coordinate.
func (d Dims) Coord(i int) (x, y, z int) {
	x = i % d.W
	i /= d.W
	y = i % d.H
	z = i / d.H
	return x, y, z
}

// Contains reports whether the coordinate lies inside the grid.
func (d Dims) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < d.W && y < d.H && z < d.D
}

// CellOf returns the cell containing a continuous position, clamped to the grid.
func (d Dims) CellOf(px, py, pz float32) (x, y, z int) {
	return clampInt(int(math.Floor(float64(px))), 0, d.W-1),
		clampInt(int(math.Floor(float64(py))), 0, d.H-1),
		clampInt(int(math.Floor(float64(pz))), 0, d.D-1)
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.W, d.H, d.D)
}

// Field is the ownership field: for every cell the id of its nearest seed and
// the Euclidean distance from the cell center to that seed. Stored as two flat
// buffers, the way a device would hold them.
type Field struct {
	Dims  Dims
	Owner []int32
	Dist  []float32
}

// NewField allocates a field with every cell unassigned.
func NewField(d Dims) *Field {
	f := &Field{
		Dims:  d,
		Owner: make([]int32, d.Cells()),
		Dist:  make([]float32, d.Cells()),
	}
	f.Reset()
	return f
}

// Reset marks every cell unassigned at infinite distance.
func (f *Field) Reset() {
	inf := float32(math.Inf(1))
	for i := range f.Owner {
		f.Owner[i] = Unassigned
		f.Dist[i] = inf
	}
}

// At returns the owner and distance of a cell.
func (f *Field) At(x, y, z int) (int32, float32) {
	i := f.Dims.Index(x, y, z)
	return f.Owner[i], f.Dist[i]
}
