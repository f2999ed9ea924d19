package systems

import "math"

// BruteForce assigns every cell to its exact nearest seed under the same
// metric and tie-breaking as JFA. O(cells*seeds); used as a reference.
func BruteForce(d Dims, seeds []Seed, opts JFAOptions) *Field {
	j := &JFA{dims: d, opts: opts}
	f := NewField(d)
	for i := range f.Owner {
		x, y, z := d.Coord(i)
		bestID := Unassigned
		bestKey := float32(math.Inf(1))
		for s := range seeds {
			k := j.key(x, y, z, &seeds[s])
			if k < bestKey || (k == bestKey && seeds[s].ID < bestID) {
				bestKey = k
				bestID = seeds[s].ID
			}
		}
		f.Owner[i] = bestID
		if bestID != Unassigned {
			f.Dist[i] = j.dist(x, y, z, &seeds[bestID])
		}
	}
	return f
}

// Agreement returns the fraction of cells on which two fields share an owner.
func Agreement(a, b *Field) float64 {
	if len(a.Owner) == 0 || len(a.Owner) != len(b.Owner) {
		return 0
	}
	same := 0
	for i := range a.Owner {
		if a.Owner[i] == b.Owner[i] {
			same++
		}
	}
	return float64(same) / float64(len(a.Owner))
}
