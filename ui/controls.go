package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// ControlsData is the state the controls panel edits.
type ControlsData struct {
	Physics systems.PhysicsParams
	Slice   int
	Depth   int
	Paused  bool
}

// ControlsResult reports what the user changed this frame.
type ControlsResult struct {
	Physics        systems.PhysicsParams
	PhysicsChanged bool
	Slice          int
	TogglePause    bool
	Reseed         bool
}

// ControlsPanel renders the left-side panel: physics sliders, the slice
// selector and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point falls inside the visible panel.
func (c *ControlsPanel) Contains(sx, sy float32, overlays *OverlayRegistry) bool {
	if !c.visible {
		return false
	}
	h := c.height(overlays)
	return sx >= float32(c.x) && sx < float32(c.x+c.width) && sy >= float32(c.y) && sy < float32(c.y+h)
}

const (
	sliderRows  = 7 // threshold, damping, pull, min radius, max radius, slice, mode buttons
	sliderPitch = 34
)

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	lh := c.renderer.Theme.LineHeight
	p := c.renderer.Theme.Padding
	h := p*3 + lh + 4 + sliderRows*sliderPitch
	for _, cat := range overlays.Categories() {
		h += lh + int32(len(overlays.ByCategory(cat)))*lh + 4
	}
	return h
}

// Draw renders the panel and returns the edits made this frame.
func (c *ControlsPanel) Draw(data ControlsData, overlays *OverlayRegistry) ControlsResult {
	res := ControlsResult{Physics: data.Physics, Slice: data.Slice}
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2 - 50)

	rl.DrawText("Physics", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight + 4)

	p := &res.Physics
	slider := func(label string, value *float32, minVal, maxVal, step float32) {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		nv := gui.SliderBar(rl.Rectangle{X: x, Y: y + 14, Width: w, Height: 14}, "", "", *value, minVal, maxVal)
		rl.DrawText(fmt.Sprintf("%.3f", *value), int32(x+w+6), int32(y+14), r.Theme.FontSize, r.Theme.ValueColor)
		if nv != *value {
			*value = Quantize(nv, step)
			res.PhysicsChanged = true
		}
		y += sliderPitch
	}

	slider("Threshold", &p.Threshold, 0, 1, 0.01)
	slider("Damping", &p.Damping, 0, 1, 0.01)
	slider("Centroid pull", &p.CentroidPull, 0, 1, 0.005)
	slider("Min radius", &p.MinRadius, 0, 16, 0.1)
	slider("Max radius", &p.MaxRadius, 0, 16, 0.1)
	if p.MaxRadius < p.MinRadius {
		p.MaxRadius = p.MinRadius
	}

	// Slice selector
	if data.Depth > 0 {
		rl.DrawText("Slice z", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		z := gui.SliderBar(rl.Rectangle{X: x, Y: y + 14, Width: w, Height: 14}, "", "",
			float32(data.Slice), 0, float32(data.Depth-1))
		res.Slice = ClampSlice(int(math.Round(float64(z))), data.Depth)
		rl.DrawText(fmt.Sprintf("%d/%d", data.Slice, data.Depth-1), int32(x+w+6), int32(y+14), r.Theme.FontSize, r.Theme.ValueColor)
	}
	y += sliderPitch

	// Mode, pause and reseed buttons
	bw := (float32(c.width-padding*2) - 8) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, p.Mode.String()) {
		p.Mode = NextMode(p.Mode)
		res.PhysicsChanged = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + 4, Y: y, Width: bw, Height: 24}, toggleText(data.Paused, "Resume", "Pause")) {
		res.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+4), Y: y, Width: bw, Height: 24}, "Reseed") {
		res.Reseed = true
	}
	y += sliderPitch

	c.drawOverlayToggles(int32(x), int32(y), overlays)
	return res
}

// drawOverlayToggles lists overlays by category with their key bindings.
func (c *ControlsPanel) drawOverlayToggles(x, y int32, overlays *OverlayRegistry) int32 {
	r := c.renderer
	lineHeight := r.Theme.LineHeight

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), c.width-r.Theme.Padding*2)
			y += lineHeight
		}

		y += 4
	}
	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "slice":
		return "Slice"
	case "seeds":
		return "Seeds"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// NextMode cycles through the physics modes in declaration order.
func NextMode(m systems.Mode) systems.Mode {
	modes := systems.Modes()
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// Quantize rounds v to the nearest multiple of step.
func Quantize(v, step float32) float32 {
	if step <= 0 {
		return v
	}
	return float32(math.Round(float64(v/step))) * step
}

// ClampSlice keeps a slice index inside [0, depth).
func ClampSlice(z, depth int) int {
	if z < 0 || depth <= 0 {
		return 0
	}
	if z >= depth {
		return depth - 1
	}
	return z
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
