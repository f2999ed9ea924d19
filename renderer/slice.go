package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/camera"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/scene"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// SliceView keeps one z-slice of the ownership field in a GPU texture.
type SliceView struct {
	tex    rl.Texture2D
	pixels []color.RGBA
	texW   int
	texH   int

	initialized bool
}

// NewSliceView creates an uninitialized slice view.
func NewSliceView() *SliceView {
	return &SliceView{}
}

// Init allocates the texture (must be called after the raylib window is created).
func (v *SliceView) Init(w, h int) {
	if v.initialized {
		if w == v.texW && h == v.texH {
			return
		}
		v.Unload()
	}

	v.texW = w
	v.texH = h
	v.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Black)
	v.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(v.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	v.initialized = true
}

// Update repaints the slice at z and uploads it. The texture is recreated
// when the grid size changed since the last call.
func (v *SliceView) Update(f *systems.Field, seeds []systems.Seed, z int, opts PaintOptions) {
	v.Init(f.Dims.W, f.Dims.H)
	PaintSlice(v.pixels, f, seeds, z, opts)
	rl.UpdateTexture(v.tex, v.pixels)
}

// Draw blits the slice so that cell (x,y) covers world [x,x+1) x [y,y+1).
func (v *SliceView) Draw(cam *camera.Camera) {
	if !v.initialized {
		return
	}
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(float32(v.texW), float32(v.texH))

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(v.texW), Height: float32(v.texH)}
	dst := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rl.DrawTexturePro(v.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLinesEx(dst, 1, rl.Color{R: 90, G: 90, B: 100, A: 255})
}

// DrawMarkers outlines each seed's cross-section with the slice plane.
// The selected seed is drawn highlighted; pass -1 for none.
func (v *SliceView) DrawMarkers(cam *camera.Camera, markers []scene.Marker, selected int32, centroids bool) {
	for _, m := range markers {
		if !cam.IsVisible(m.X, m.Y, m.Radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(m.X, m.Y)
		r := m.Radius * cam.Zoom

		outline := rl.Color{R: 0, G: 0, B: 0, A: 200}
		if m.Occluded {
			outline = rl.Color{R: 220, G: 60, B: 60, A: 220}
		}
		if m.ID == selected {
			outline = rl.Yellow
			rl.DrawCircleLines(int32(sx), int32(sy), r+2, outline)
		}
		rl.DrawCircleLines(int32(sx), int32(sy), r, outline)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 3, rl.Color{
			R: channel(m.Tint.R), G: channel(m.Tint.G), B: channel(m.Tint.B), A: 255,
		})

		if centroids && !m.Occluded {
			cx, cy := cam.WorldToScreen(m.CentroidX, m.CentroidY)
			rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: cx, Y: cy}, rl.White)
			rl.DrawCircleV(rl.Vector2{X: cx, Y: cy}, 2, rl.White)
		}
	}
}

// Unload releases the texture.
func (v *SliceView) Unload() {
	if !v.initialized {
		return
	}
	rl.UnloadTexture(v.tex)
	v.initialized = false
}
