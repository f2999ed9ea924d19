package camera

import (
	"math"
	"testing"
)

func TestNewFitsSlice(t *testing.T) {
	cam := New(800, 600, 40, 20)

	if cam.X != 20 || cam.Y != 10 {
		t.Errorf("expected camera at (20, 10), got (%f, %f)", cam.X, cam.Y)
	}
	// min(800/40, 600/20) = min(20, 30) = 20
	if cam.Zoom != 20 {
		t.Errorf("expected fit zoom 20, got %f", cam.Zoom)
	}
	if cam.MinZoom != 10 || cam.MaxZoom != 320 {
		t.Errorf("zoom limits = [%f, %f], want [10, 320]", cam.MinZoom, cam.MaxZoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(800, 600, 40, 20)

	sx, sy := cam.WorldToScreen(20, 10)
	if math.Abs(float64(sx-400)) > 0.01 || math.Abs(float64(sy-300)) > 0.01 {
		t.Errorf("expected screen center (400, 300), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 48, 48)
	cam.Pan(37, -12)
	cam.ZoomBy(1.7)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestCellAt(t *testing.T) {
	cam := New(800, 600, 40, 20) // zoom 20, slice spans x in [0,800), y in [100,500)

	tests := []struct {
		name   string
		sx, sy float32
		x, y   int
		ok     bool
	}{
		{"origin cell", 5, 105, 0, 0, true},
		{"center", 400, 300, 20, 10, true},
		{"last cell", 799, 499, 39, 19, true},
		{"above slice", 400, 50, 0, 0, false},
		{"below slice", 400, 550, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cam.CellAt(tt.sx, tt.sy)
			if ok != tt.ok || (ok && (x != tt.x || y != tt.y)) {
				t.Errorf("CellAt(%v,%v) = %d,%d,%v; want %d,%d,%v", tt.sx, tt.sy, x, y, ok, tt.x, tt.y, tt.ok)
			}
		})
	}
}

func TestPanClamps(t *testing.T) {
	cam := New(800, 600, 40, 20)

	cam.Pan(-100000, 100000)
	if cam.X != 0 || cam.Y != 20 {
		t.Errorf("expected center clamped to (0, 20), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 40, 20)

	cam.SetZoom(0.1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(1e6)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(800, 600, 40, 20)

	wx0, wy0 := cam.ScreenToWorld(200, 250)
	cam.ZoomAt(200, 250, 2)
	wx1, wy1 := cam.ScreenToWorld(200, 250)

	if math.Abs(float64(wx1-wx0)) > 1e-3 || math.Abs(float64(wy1-wy0)) > 1e-3 {
		t.Errorf("anchor moved from (%f,%f) to (%f,%f)", wx0, wy0, wx1, wy1)
	}
	if cam.Zoom != 40 {
		t.Errorf("zoom = %f, want 40", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 40, 20)
	cam.SetZoom(40) // visible x in [10, 30], y in [2.5, 17.5]

	if !cam.IsVisible(20, 10, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(2, 10, 1) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(8, 10, 3) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestSetWorldRefits(t *testing.T) {
	cam := New(800, 600, 40, 20)
	cam.ZoomBy(3)
	cam.Pan(50, 50)

	cam.SetWorld(16, 16)
	if cam.X != 8 || cam.Y != 8 {
		t.Errorf("expected center (8, 8), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 37.5 { // min(800/16, 600/16)
		t.Errorf("zoom = %f, want 37.5", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, 40, 20)
	cam.X = 5
	cam.Y = 5
	cam.Zoom = 55

	cam.Reset()

	if cam.X != 20 || cam.Y != 10 {
		t.Errorf("expected position (20, 10), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 20 {
		t.Errorf("expected zoom 20, got %f", cam.Zoom)
	}
}
