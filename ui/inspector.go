package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/scene"
)

// InspectorData holds what the inspector shows for one seed.
type InspectorData struct {
	View      scene.View
	Threshold float32 // physics threshold the acute ratio is compared against
}

// SeedPanel returns the inspector layout for InspectorData.
func SeedPanel() PanelDescriptor {
	return PanelDescriptor{
		ID:     "seed",
		Title:  "Seed",
		Width:  280,
		Anchor: AnchorBottomRight,
		Sections: []SectionDescriptor{
			{
				ID:    "identity",
				Title: "Identity",
				Fields: []FieldDescriptor{
					{ID: "id", Label: "ID", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(inspected(d).View.Ref.ID)
					}},
					{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
						p := inspected(d).View.Pos
						return fmt.Sprintf("%.2f, %.2f, %.2f", p.X, p.Y, p.Z)
					}},
					{ID: "tint", Label: "Color", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
						t := inspected(d).View.Tint
						return rl.Color{R: uint8(t.R * 255), G: uint8(t.G * 255), B: uint8(t.B * 255), A: 255}
					}},
				},
			},
			{
				ID:    "dynamics",
				Title: "Dynamics",
				Fields: []FieldDescriptor{
					{ID: "radius", Label: "Radius", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 {
						return inspected(d).View.Body.Radius
					}},
					{ID: "growth_rate", Label: "Growth", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 {
						return inspected(d).View.Growth.Rate
					}},
					{ID: "momentum", Label: "Momentum", Widget: WidgetCenteredBar, Range: FieldRange{Min: -0.5, Max: 0.5}, Getter: func(d any) float32 {
						return inspected(d).View.Growth.Momentum
					}},
				},
			},
			{
				ID:    "cell",
				Title: "Cell",
				Fields: []FieldDescriptor{
					{ID: "voxels", Label: "Voxels", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("%d", inspected(d).View.Cell.Voxels)
					}},
					{ID: "junctions", Label: "Junctions", Widget: WidgetText, TextGetter: func(d any) string {
						c := inspected(d).View.Cell
						return fmt.Sprintf("%d (%d acute)", c.Junctions, c.Acute)
					}},
					{
						ID: "acute_ratio", Label: "Acute", Widget: WidgetThresholdBar,
						Getter:          func(d any) float32 { return inspected(d).View.Cell.AcuteRatio },
						ThresholdGetter: func(d any) float32 { return inspected(d).Threshold },
						Visible:         func(d any) bool { return inspected(d).View.Cell.Junctions > 0 },
					},
					{ID: "centroid", Label: "Centroid", Widget: WidgetText, TextGetter: func(d any) string {
						c := inspected(d).View.Cell.Centroid
						return fmt.Sprintf("%.2f, %.2f, %.2f", c[0], c[1], c[2])
					}},
				},
				Visible: func(d any) bool { return !inspected(d).View.Cell.Occluded() },
			},
			{
				ID:    "occluded",
				Title: "Occluded",
				Fields: []FieldDescriptor{
					{ID: "frozen", Label: "State", Widget: WidgetText, TextGetter: func(any) string { return "frozen, owns no cells" }},
				},
				Visible: func(d any) bool { return inspected(d).View.Cell.Occluded() },
			},
		},
	}
}

func inspected(d any) *InspectorData {
	switch v := d.(type) {
	case *InspectorData:
		return v
	case InspectorData:
		return &v
	}
	return &InspectorData{}
}

// Inspector renders the seed inspection panel.
type Inspector struct {
	renderer *Renderer
	panel    PanelDescriptor
}

// NewInspector creates a new inspector panel.
func NewInspector() *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		panel:    SeedPanel(),
	}
}

// Draw renders the inspector anchored inside the screen.
func (ins *Inspector) Draw(data InspectorData, screenW, screenH int32) {
	h := ins.renderer.Theme.PanelHeight(ins.panel, &data)
	x, y := PanelOrigin(ins.panel.Anchor, 10, ins.panel.Width, h, screenW, screenH)
	ins.renderer.DrawPanelDescriptor(x, y, ins.panel, &data)
}
