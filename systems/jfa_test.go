package systems

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// flood runs jump flooding on fresh buffers with a dedicated dispatcher.
func flood(t *testing.T, d Dims, seeds []Seed, opts JFAOptions, workers int) *Field {
	t.Helper()
	disp := NewDispatcher(workers, 512)
	defer disp.Stop()

	j := NewJFA(d, opts)
	out, err := j.Run(context.Background(), disp, NewField(d), NewField(d), seeds)
	if err != nil {
		t.Fatalf("jfa run: %v", err)
	}
	return out
}

// sameField reports whether two fields hold bit-identical contents.
func sameField(a, b *Field) bool {
	if a.Dims != b.Dims {
		return false
	}
	for i := range a.Owner {
		if a.Owner[i] != b.Owner[i] || math.Float32bits(a.Dist[i]) != math.Float32bits(b.Dist[i]) {
			return false
		}
	}
	return true
}

func assigned(f *Field) int {
	return len(f.Owner) - ownedBy(f, Unassigned)
}

func seedsAt(points ...mgl32.Vec3) []Seed {
	seeds := make([]Seed, len(points))
	for i, p := range points {
		seeds[i] = Seed{ID: int32(i), Position: p, Radius: 1, GrowthRate: 1}
	}
	return seeds
}

func TestStepSizes(t *testing.T) {
	tests := []struct {
		name   string
		dims   Dims
		refine int
		want   []int
	}{
		{"cube 16", Dims{16, 16, 16}, 0, []int{8, 4, 2, 1}},
		{"odd 15", Dims{15, 9, 3}, 0, []int{8, 4, 2, 1}},
		{"single cell", Dims{1, 1, 1}, 0, []int{1}},
		{"flat 64", Dims{64, 4, 2}, 0, []int{32, 16, 8, 4, 2, 1}},
		{"refined", Dims{8, 8, 8}, 2, []int{4, 2, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StepSizes(tt.dims, tt.refine)
			if len(got) != len(tt.want) {
				t.Fatalf("StepSizes(%v) = %v, want %v", tt.dims, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("StepSizes(%v) = %v, want %v", tt.dims, got, tt.want)
				}
			}
		})
	}
}

func TestJFATwoSeedSplit(t *testing.T) {
	d := Dims{16, 16, 16}
	seeds := seedsAt(mgl32.Vec3{4, 8, 8}, mgl32.Vec3{12, 8, 8})

	f := flood(t, d, seeds, JFAOptions{}, 4)

	for i, owner := range f.Owner {
		x, _, _ := d.Coord(i)
		want := int32(0)
		if x >= 8 {
			want = 1
		}
		if owner != want {
			t.Fatalf("cell %d (x=%d) owned by %d, want %d", i, x, owner, want)
		}
	}
}

func TestJFACoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := Dims{20, 12, 9}
	seeds := RandomSeeds(d, SeedOptions{Count: 17, InitialRadius: 1}, rng)

	f := flood(t, d, seeds, JFAOptions{}, 3)

	if got := assigned(f); got != d.Cells() {
		t.Errorf("assigned cells = %d, want %d", got, d.Cells())
	}
}

// accurateJFA is the refinement the default configuration ships with.
var accurateJFA = JFAOptions{RefinePasses: 2}

func TestJFAMatchesBruteForce(t *testing.T) {
	d := Dims{16, 16, 16}
	trials := 150
	if testing.Short() {
		trials = 20
	}

	for _, n := range []int{2, 3, 4} {
		worst := 1.0
		for trial := 0; trial < trials; trial++ {
			rng := rand.New(rand.NewSource(int64(trial*31 + n)))
			seeds := RandomSeeds(d, SeedOptions{Count: n, InitialRadius: 1}, rng)

			got := flood(t, d, seeds, accurateJFA, 4)
			want := BruteForce(d, seeds, accurateJFA)

			agree := Agreement(got, want)
			worst = min(worst, agree)
			if agree < 0.99 {
				t.Errorf("n=%d trial=%d: agreement %.4f, want >= 0.99", n, trial, agree)
			}
			if assigned(got) != d.Cells() {
				t.Errorf("n=%d trial=%d: %d of %d cells assigned", n, trial, assigned(got), d.Cells())
			}
		}
		t.Logf("n=%d: worst agreement %.4f over %d layouts", n, worst, trials)
	}
}

func TestJFASharedHomeCell(t *testing.T) {
	d := Dims{16, 16, 16}
	tests := []struct {
		name  string
		seeds []Seed
	}{
		{"corner pair", seedsAt(
			mgl32.Vec3{0.99, 14.9, 13.2},
			mgl32.Vec3{0.8, 14.1, 13.7},
			mgl32.Vec3{14, 9, 9},
		)},
		{"center pair", seedsAt(
			mgl32.Vec3{8.1, 8.1, 8.1},
			mgl32.Vec3{8.9, 8.9, 8.9},
		)},
		{"triple", seedsAt(
			mgl32.Vec3{3, 12, 5},
			mgl32.Vec3{5.2, 5.2, 5.2},
			mgl32.Vec3{5.8, 5.5, 5.1},
			mgl32.Vec3{5.4, 5.9, 5.7},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := BruteForce(d, tt.seeds, JFAOptions{})
			for _, opts := range []JFAOptions{{}, accurateJFA} {
				got := flood(t, d, tt.seeds, opts, 3)
				for _, s := range tt.seeds {
					if owned := ownedBy(got, s.ID); owned == 0 && ownedBy(want, s.ID) > 0 {
						t.Errorf("refine=%d: seed %d owns no cells, exact owns %d",
							opts.RefinePasses, s.ID, ownedBy(want, s.ID))
					}
				}
			}
			if agree := Agreement(flood(t, d, tt.seeds, accurateJFA, 3), want); agree < 0.99 {
				t.Errorf("agreement %.4f, want >= 0.99", agree)
			}
		})
	}
}

func ownedBy(f *Field, id int32) int {
	n := 0
	for _, o := range f.Owner {
		if o == id {
			n++
		}
	}
	return n
}

func TestJFASymmetricExact(t *testing.T) {
	d := Dims{16, 16, 16}
	tests := []struct {
		name  string
		seeds []Seed
	}{
		{"pair on x", seedsAt(mgl32.Vec3{4, 8, 8}, mgl32.Vec3{12, 8, 8})},
		{"square in xy", seedsAt(
			mgl32.Vec3{4, 4, 8}, mgl32.Vec3{12, 4, 8},
			mgl32.Vec3{4, 12, 8}, mgl32.Vec3{12, 12, 8},
		)},
		{"coincident", seedsAt(mgl32.Vec3{8, 8, 8}, mgl32.Vec3{8, 8, 8})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flood(t, d, tt.seeds, JFAOptions{}, 4)
			want := BruteForce(d, tt.seeds, JFAOptions{})
			if agree := Agreement(got, want); agree != 1 {
				t.Errorf("agreement %.4f, want 1", agree)
			}
		})
	}
}

func TestJFACoincidentSeedsFavorLowerID(t *testing.T) {
	d := Dims{8, 8, 8}
	seeds := seedsAt(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{3, 3, 3})

	f := flood(t, d, seeds, JFAOptions{}, 2)

	for i, owner := range f.Owner {
		if owner != 0 {
			t.Fatalf("cell %d owned by %d, want 0", i, owner)
		}
	}
}

func TestJFADeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	d := Dims{24, 24, 24}
	seeds := RandomSeeds(d, SeedOptions{Count: 40, InitialRadius: 1}, rng)

	a := flood(t, d, seeds, JFAOptions{RefinePasses: 1}, 1)
	b := flood(t, d, seeds, JFAOptions{RefinePasses: 1}, 8)
	c := flood(t, d, seeds, JFAOptions{RefinePasses: 1}, 8)

	if !sameField(a, b) || !sameField(b, c) {
		t.Error("ownership fields differ between runs")
	}
}

func TestJFARadiusWeightFavorsLargerSeed(t *testing.T) {
	d := Dims{16, 16, 16}
	seeds := seedsAt(mgl32.Vec3{4, 8, 8}, mgl32.Vec3{12, 8, 8})
	seeds[0].Radius = 4

	plain := flood(t, d, seeds, JFAOptions{}, 2)
	weighted := flood(t, d, seeds, JFAOptions{RadiusWeight: 1}, 2)

	if ownedBy(weighted, 0) <= ownedBy(plain, 0) {
		t.Errorf("weighted cells %d, plain %d: expected larger radius to claim more cells",
			ownedBy(weighted, 0), ownedBy(plain, 0))
	}
	if agree := Agreement(weighted, BruteForce(d, seeds, JFAOptions{RadiusWeight: 1})); agree < 0.99 {
		t.Errorf("weighted agreement %.4f, want >= 0.99", agree)
	}
}

func TestJFADistanceIsEuclidean(t *testing.T) {
	d := Dims{16, 16, 16}
	seeds := seedsAt(mgl32.Vec3{4, 8, 8}, mgl32.Vec3{12, 8, 8})

	f := flood(t, d, seeds, JFAOptions{}, 2)

	owner, dist := f.At(0, 8, 8)
	if owner != 0 {
		t.Fatalf("owner = %d, want 0", owner)
	}
	// Cell center (0.5, 8.5, 8.5) to (4, 8, 8).
	want := float32(3.5707142)
	if diff := dist - want; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("dist = %v, want %v", dist, want)
	}
}

func TestJFACancelled(t *testing.T) {
	d := Dims{16, 16, 16}
	seeds := seedsAt(mgl32.Vec3{4, 8, 8}, mgl32.Vec3{12, 8, 8})

	disp := NewDispatcher(2, 256)
	defer disp.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJFA(d, JFAOptions{}).Run(ctx, disp, NewField(d), NewField(d), seeds)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func BenchmarkJFA32(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	d := Dims{32, 32, 32}
	seeds := RandomSeeds(d, SeedOptions{Count: 64, InitialRadius: 1}, rng)
	disp := NewDispatcher(0, 0)
	defer disp.Stop()
	j := NewJFA(d, JFAOptions{})
	fa, fb := NewField(d), NewField(d)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := j.Run(context.Background(), disp, fa, fb, seeds); err != nil {
			b.Fatal(err)
		}
	}
}
