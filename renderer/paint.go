// Package renderer draws z-slices of the ownership field with raylib.
package renderer

import (
	"image/color"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// PaintOptions selects what PaintSlice encodes into each pixel.
type PaintOptions struct {
	ShadeDistance bool    // darken cells far from their seed
	MaxDist       float32 // distance at full shading; <= 0 uses the grid's largest axis
	Borders       bool    // darken cells whose in-slice neighbor has another owner
	Junctions     bool    // highlight block anchors with at least JunctionOwners distinct owners
	// JunctionOwners defaults to systems.MinJunctionOwners.
	JunctionOwners int
}

var (
	unassignedColor = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	junctionColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// PaintSlice writes the z-plane of f into dst, one pixel per cell, row-major
// with y growing down. dst must hold W*H pixels. Owners outside the seed
// store are painted as unassigned.
func PaintSlice(dst []color.RGBA, f *systems.Field, seeds []systems.Seed, z int, opts PaintOptions) {
	d := f.Dims
	if len(dst) < d.W*d.H || z < 0 || z >= d.D {
		return
	}
	maxDist := opts.MaxDist
	if maxDist <= 0 {
		maxDist = float32(d.MaxAxis())
	}
	minOwners := opts.JunctionOwners
	if minOwners < systems.MinJunctionOwners {
		minOwners = systems.MinJunctionOwners
	}

	for y := 0; y < d.H; y++ {
		for x := 0; x < d.W; x++ {
			i := d.Index(x, y, z)
			owner := f.Owner[i]
			px := &dst[y*d.W+x]

			if owner < 0 || int(owner) >= len(seeds) {
				*px = unassignedColor
				continue
			}

			c := seeds[owner].Color
			k := float32(1)
			if opts.ShadeDistance {
				t := f.Dist[i] / maxDist
				if t > 1 {
					t = 1
				}
				k -= 0.6 * t
			}
			if opts.Borders && onBorder(f, x, y, z, owner) {
				k *= 0.35
			}
			*px = color.RGBA{R: channel(c[0] * k), G: channel(c[1] * k), B: channel(c[2] * k), A: 255}

			if opts.Junctions && blockOwners(f, x, y, z) >= minOwners {
				*px = junctionColor
			}
		}
	}
}

// onBorder reports whether a 4-connected in-slice neighbor has another owner.
func onBorder(f *systems.Field, x, y, z int, owner int32) bool {
	d := f.Dims
	if x+1 < d.W && f.Owner[d.Index(x+1, y, z)] != owner {
		return true
	}
	if x > 0 && f.Owner[d.Index(x-1, y, z)] != owner {
		return true
	}
	if y+1 < d.H && f.Owner[d.Index(x, y+1, z)] != owner {
		return true
	}
	if y > 0 && f.Owner[d.Index(x, y-1, z)] != owner {
		return true
	}
	return false
}

// blockOwners counts distinct assigned owners in the 2x2x2 block anchored at
// (x,y,z). Blocks that leave the grid count zero.
func blockOwners(f *systems.Field, x, y, z int) int {
	d := f.Dims
	if x+1 >= d.W || y+1 >= d.H || z+1 >= d.D {
		return 0
	}
	var seen [8]int32
	n := 0
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				o := f.Owner[d.Index(x+dx, y+dy, z+dz)]
				if o < 0 {
					continue
				}
				dup := false
				for _, s := range seen[:n] {
					if s == o {
						dup = true
						break
					}
				}
				if !dup {
					seen[n] = o
					n++
				}
			}
		}
	}
	return n
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
