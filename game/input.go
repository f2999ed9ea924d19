package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.uiControls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) && rl.IsKeyDown(rl.KeyLeftShift) {
		g.reseed()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	g.handleSliceInput()
	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.uiPerfPanel.SetPosition(int32(w)-330, 150)
}

// handleSliceInput moves the viewed z-plane with [ ] or PageUp/PageDown.
func (g *Game) handleSliceInput() {
	depth := g.pipe.Params().Dims.D
	if rl.IsKeyPressed(rl.KeyRightBracket) || rl.IsKeyPressed(rl.KeyPageUp) {
		g.z = ui.ClampSlice(g.z+1, depth)
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) || rl.IsKeyPressed(rl.KeyPageDown) {
		g.z = ui.ClampSlice(g.z-1, depth)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor with the mouse wheel
	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		mouse := rl.GetMousePosition()
		g.camera.ZoomAt(mouse.X, mouse.Y, 1+wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleSelection picks the seed owning the clicked cell on the current
// slice. Clicking an unassigned cell or pressing Backspace clears it.
func (g *Game) handleSelection() {
	if rl.IsKeyPressed(rl.KeyBackspace) {
		g.selected = -1
	}
	if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		return
	}
	mouse := rl.GetMousePosition()
	if g.uiControls.Contains(mouse.X, mouse.Y, g.uiOverlays) {
		return
	}
	x, y, ok := g.camera.CellAt(mouse.X, mouse.Y)
	if !ok {
		return
	}
	f := g.pipe.Field()
	owner, _ := f.At(x, y, ui.ClampSlice(g.z, f.Dims.D))
	g.selected = owner
}
