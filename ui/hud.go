package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/scene"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Frame        uint64
	Seeds        int
	Occluded     int
	Junctions    int64
	Coverage     float64
	VolumeCV     float64
	Mode         string
	Slice        int
	Depth        int
	Workers      int
	FPS          int32
	Paused       bool
	Largest      []scene.View // biggest cells, largest first
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the top-right corner.
func (h *HUD) Draw(data HUDData) {
	x := data.ScreenWidth - 330

	rl.DrawText(data.Title, x, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Seeds: %d | Occluded: %d | Junctions: %d", data.Seeds, data.Occluded, data.Junctions),
		x, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Coverage: %.1f%% | Volume CV: %.3f", data.Coverage*100, data.VolumeCV),
		x, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Mode: %s | z: %d/%d", data.Frame, data.Mode, data.Slice, data.Depth-1),
		x, 75, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Workers: %d | FPS: %d", data.Workers, data.FPS),
		x, 95, 16, rl.LightGray,
	)

	rl.DrawText(LargestLine(data.Largest), x, 115, 16, rl.LightGray)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, x, 135, 16, rl.Yellow)
}

// LargestLine formats the biggest cells as "Largest: #id voxels | ...".
func LargestLine(views []scene.View) string {
	if len(views) == 0 {
		return "Largest: -"
	}
	parts := make([]string, len(views))
	for i, v := range views {
		parts[i] = fmt.Sprintf("#%d %d", v.Ref.ID, v.Cell.Voxels)
	}
	return "Largest: " + strings.Join(parts, " | ")
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfRow is one phase line of the performance panel.
type PerfRow struct {
	Phase string
	Avg   time.Duration
	Pct   float64
}

// PerfRows orders the phases of stats by share of frame time, descending.
// Ties keep pipeline order.
func PerfRows(stats telemetry.PerfStats) []PerfRow {
	rows := make([]PerfRow, 0, len(stats.PhaseAvg))
	for _, phase := range telemetry.Phases() {
		avg, ok := stats.PhaseAvg[phase]
		if !ok {
			continue
		}
		rows = append(rows, PerfRow{Phase: phase, Avg: avg, Pct: stats.PhasePct[phase]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pct > rows[j].Pct
	})
	return rows
}

// PerfPanel renders the per-phase performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Frame: %s (%.1f/s)", stats.AvgFrameDuration.Round(time.Microsecond), stats.FramesPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for _, row := range PerfRows(stats) {
		color := rl.LightGray
		if row.Pct > 50 {
			color = rl.Red
		} else if row.Pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", row.Phase, row.Avg.Round(time.Microsecond), row.Pct),
			x, y, 12, color,
		)
		y += 14
	}

	if stats.DrawDuration > 0 {
		rl.DrawText(fmt.Sprintf("%-10s %8s", "draw", stats.DrawDuration.Round(time.Microsecond)), x, y, 12, rl.Gray)
	}
}
