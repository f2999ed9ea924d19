package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/ui"
)

// Draw renders the current slice, seed markers and UI.
func (g *Game) Draw() {
	params := g.pipe.Params()
	field := g.pipe.Field()
	seeds := g.pipe.Seeds()

	// The scene mirrors the published frame for marker and inspector queries.
	if g.scene.Frame() != g.Frame() || g.scene.Len() != len(seeds) {
		g.scene.Sync(g.Frame(), seeds, g.pipe.Stats())
	}
	if g.camera.WorldW != float32(params.Dims.W) || g.camera.WorldH != float32(params.Dims.H) {
		g.camera.SetWorld(float32(params.Dims.W), float32(params.Dims.H))
	}
	g.z = ui.ClampSlice(g.z, params.Dims.D)

	g.slice.Update(field, seeds, g.z, paintOptions(g.uiOverlays, params.JunctionMinOwners))

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 12, B: 16, A: 255})

	g.slice.Draw(g.camera)
	if g.uiOverlays.IsEnabled(ui.OverlayMarkers) {
		g.slice.DrawMarkers(g.camera, g.scene.SliceMarkers(g.z), g.selected, g.uiOverlays.IsEnabled(ui.OverlayCentroids))
	}

	g.drawUI(params.Dims.D)

	rl.EndDrawing()
	g.perfCollector.RecordDraw()
}

// drawUI draws the controls, HUD, perf panel and inspector.
func (g *Game) drawUI(depth int) {
	params := g.pipe.Params()

	res := g.uiControls.Draw(ui.ControlsData{
		Physics: g.physics,
		Slice:   g.z,
		Depth:   depth,
		Paused:  g.paused,
	}, g.uiOverlays)
	if res.PhysicsChanged {
		g.setPhysics(res.Physics)
	}
	g.z = res.Slice
	if res.TogglePause {
		g.paused = !g.paused
	}
	if res.Reseed {
		g.reseed()
	}

	occluded := len(g.scene.Occluded())
	g.uiHUD.Draw(ui.HUDData{
		Title:        "Voronoi Foam",
		Frame:        g.Frame(),
		Seeds:        g.scene.Len(),
		Occluded:     occluded,
		Junctions:    g.lastResult.Junctions,
		Coverage:     coverage(g.lastResult.Coverage, g.lastResult.Cells),
		VolumeCV:     g.lastStats.VolumeCV,
		Mode:         params.Physics.Mode.String(),
		Slice:        g.z,
		Depth:        depth,
		Workers:      g.pipe.Workers(),
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		Largest:      g.scene.Largest(hudLargest),
		ScreenWidth:  int32(g.screenWidth),
		ScreenHeight: int32(g.screenHeight),
	})

	if g.uiOverlays.IsEnabled(ui.OverlayPerf) {
		g.uiPerfPanel.Draw(g.perfCollector.Stats())
	}

	if g.selected >= 0 {
		if view, ok := g.scene.Lookup(g.selected); ok {
			g.uiInspector.Draw(ui.InspectorData{View: view, Threshold: params.Physics.Threshold},
				int32(g.screenWidth), int32(g.screenHeight))
		}
	}

	g.uiHUD.DrawControls(int32(g.screenWidth), int32(g.screenHeight),
		"SPACE: Pause | < >: Speed | [ ]: Slice | Click: Select | TAB: Panel | Shift+R: Reseed | G B J M C P: Overlays")
}

// hudLargest is how many of the biggest cells the HUD lists.
const hudLargest = 3

func coverage(assigned int64, cells int) float64 {
	if cells == 0 {
		return 0
	}
	return float64(assigned) / float64(cells)
}
