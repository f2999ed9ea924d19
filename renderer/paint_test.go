package renderer

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// splitField builds a 4x4x2 field owned by seed 0 for x < 2 and seed 1 otherwise.
func splitField() (*systems.Field, []systems.Seed) {
	d := systems.Dims{W: 4, H: 4, D: 2}
	f := systems.NewField(d)
	for i := range f.Owner {
		x, _, _ := d.Coord(i)
		if x < 2 {
			f.Owner[i] = 0
		} else {
			f.Owner[i] = 1
		}
		f.Dist[i] = 0
	}
	seeds := []systems.Seed{
		{ID: 0, Color: mgl32.Vec3{1, 0, 0}},
		{ID: 1, Color: mgl32.Vec3{0, 0, 1}},
	}
	return f, seeds
}

func TestPaintSliceOwnerColors(t *testing.T) {
	f, seeds := splitField()
	dst := make([]color.RGBA, 16)

	PaintSlice(dst, f, seeds, 0, PaintOptions{})

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := red
			if x >= 2 {
				want = blue
			}
			if got := dst[y*4+x]; got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPaintSliceUnassigned(t *testing.T) {
	f, seeds := splitField()
	f.Owner[f.Dims.Index(3, 3, 1)] = systems.Unassigned
	f.Owner[f.Dims.Index(0, 0, 1)] = 7 // outside the store
	dst := make([]color.RGBA, 16)

	PaintSlice(dst, f, seeds, 1, PaintOptions{})

	if dst[15] != unassignedColor {
		t.Errorf("unassigned cell = %v, want %v", dst[15], unassignedColor)
	}
	if dst[0] != unassignedColor {
		t.Errorf("unknown owner = %v, want %v", dst[0], unassignedColor)
	}
}

func TestPaintSliceOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  PaintOptions
		setup func(f *systems.Field)
		x, y  int
		want  color.RGBA
	}{
		{
			name: "border darkens",
			opts: PaintOptions{Borders: true},
			x:    1, y: 0,
			want: color.RGBA{R: channel(0.35), A: 255},
		},
		{
			name: "interior keeps color",
			opts: PaintOptions{Borders: true},
			x:    0, y: 1,
			want: color.RGBA{R: 255, A: 255},
		},
		{
			name: "distance shading at max",
			opts: PaintOptions{ShadeDistance: true, MaxDist: 2},
			setup: func(f *systems.Field) {
				f.Dist[f.Dims.Index(0, 0, 0)] = 5
			},
			x: 0, y: 0,
			want: color.RGBA{R: channel(0.4), A: 255},
		},
		{
			name: "junction highlight",
			opts: PaintOptions{Junctions: true},
			setup: func(f *systems.Field) {
				f.Owner[f.Dims.Index(1, 1, 1)] = 2
			},
			x: 1, y: 1,
			want: junctionColor,
		},
		{
			name: "two owners is not a junction",
			opts: PaintOptions{Junctions: true},
			x:    1, y: 1,
			want: color.RGBA{R: 255, A: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, seeds := splitField()
			seeds = append(seeds, systems.Seed{ID: 2, Color: mgl32.Vec3{0, 1, 0}})
			if tt.setup != nil {
				tt.setup(f)
			}
			dst := make([]color.RGBA, 16)
			PaintSlice(dst, f, seeds, 0, tt.opts)
			if got := dst[tt.y*4+tt.x]; got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPaintSliceOutOfRange(t *testing.T) {
	f, seeds := splitField()
	dst := make([]color.RGBA, 16)
	for i := range dst {
		dst[i] = color.RGBA{R: 1}
	}

	PaintSlice(dst, f, seeds, 5, PaintOptions{})
	PaintSlice(dst[:3], f, seeds, 0, PaintOptions{})

	for i, px := range dst {
		if px != (color.RGBA{R: 1}) {
			t.Fatalf("pixel %d modified: %v", i, px)
		}
	}
}
