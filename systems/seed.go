package systems

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Seed is one generator point of the diagram. ID equals the seed's index in
// the store and never changes during a run.
type Seed struct {
	ID       int32
	Position mgl32.Vec3
	Radius   float32

	// Per-seed physics state, carried across frames.
	GrowthRate float32
	Momentum   float32

	// Display only.
	Color mgl32.Vec3
}

// SeedOptions controls RandomSeeds.
type SeedOptions struct {
	Count         int
	InitialRadius float32
	RadiusJitter  float32 // uniform +/- jitter around InitialRadius
	GrowthRate    float32
	GrowthJitter  float32 // uniform +/- jitter around GrowthRate
}

// RandomSeeds places seeds uniformly inside the grid. Colors are spread
// around the hue wheel by golden-ratio stepping so neighbors stay distinct.
func RandomSeeds(d Dims, opts SeedOptions, rng *rand.Rand) []Seed {
	seeds := make([]Seed, opts.Count)
	hue := rng.Float64()
	for i := range seeds {
		hue = math.Mod(hue+0.618033988749895, 1)
		seeds[i] = Seed{
			ID: int32(i),
			Position: mgl32.Vec3{
				rng.Float32() * float32(d.W),
				rng.Float32() * float32(d.H),
				rng.Float32() * float32(d.D),
			},
			Radius:     max(opts.InitialRadius+jitter(rng, opts.RadiusJitter), 0),
			GrowthRate: opts.GrowthRate + jitter(rng, opts.GrowthJitter),
			Color:      hsvToRGB(float32(hue), 0.65, 0.95),
		}
	}
	return seeds
}

// CloneSeeds returns a copy of a seed slice.
func CloneSeeds(seeds []Seed) []Seed {
	out := make([]Seed, len(seeds))
	copy(out, seeds)
	return out
}

func jitter(rng *rand.Rand, amount float32) float32 {
	if amount == 0 {
		return 0
	}
	return (rng.Float32()*2 - 1) * amount
}

// hsvToRGB converts h,s,v in [0,1] to an RGB vector in [0,1].
func hsvToRGB(h, s, v float32) mgl32.Vec3 {
	h6 := h * 6
	i := int(h6) % 6
	f := h6 - float32(int(h6))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i {
	case 0:
		return mgl32.Vec3{v, t, p}
	case 1:
		return mgl32.Vec3{q, v, p}
	case 2:
		return mgl32.Vec3{p, v, t}
	case 3:
		return mgl32.Vec3{p, q, v}
	case 4:
		return mgl32.Vec3{t, p, v}
	default:
		return mgl32.Vec3{v, p, q}
	}
}
