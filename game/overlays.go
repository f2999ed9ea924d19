package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/renderer"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.uiOverlays.Toggle(desc.ID)
		}
	}
}

// paintOptions maps the enabled slice overlays onto renderer options.
func paintOptions(overlays *ui.OverlayRegistry, junctionOwners int) renderer.PaintOptions {
	return renderer.PaintOptions{
		ShadeDistance:  overlays.IsEnabled(ui.OverlayDistance),
		Borders:        overlays.IsEnabled(ui.OverlayBorders),
		Junctions:      overlays.IsEnabled(ui.OverlayJunctions),
		JunctionOwners: junctionOwners,
	}
}
