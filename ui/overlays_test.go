package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	tests := []struct {
		id   OverlayID
		want bool
	}{
		{OverlayBorders, true},
		{OverlayMarkers, true},
		{OverlayDistance, false},
		{OverlayJunctions, false},
		{OverlayCentroids, false},
		{OverlayPerf, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := reg.IsEnabled(tt.id); got != tt.want {
				t.Errorf("IsEnabled(%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}

	got := reg.EnabledOverlays()
	if len(got) != 2 || got[0] != OverlayBorders || got[1] != OverlayMarkers {
		t.Errorf("EnabledOverlays() = %v, want [borders markers]", got)
	}
}

func TestOverlayToggleAndKeys(t *testing.T) {
	reg := NewOverlayRegistry()

	id, state, ok := reg.HandleKeyPress(rl.KeyJ)
	if !ok || id != OverlayJunctions || !state {
		t.Fatalf("HandleKeyPress(J) = %s,%v,%v; want junctions,true,true", id, state, ok)
	}
	if reg.Toggle(OverlayJunctions) {
		t.Error("second toggle should disable")
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle")
	}
	if reg.Toggle("missing") {
		t.Error("unknown overlay should report false")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: "a", Category: "test", Exclusive: []OverlayID{"b"}})
	reg.Register(OverlayDescriptor{ID: "b", Category: "test", Exclusive: []OverlayID{"a"}})

	reg.SetEnabled("a", true)
	reg.Toggle("b")

	if reg.IsEnabled("a") {
		t.Error("enabling b should disable a")
	}
	if !reg.IsEnabled("b") {
		t.Error("b should be enabled")
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()

	cats := reg.Categories()
	want := []string{"slice", "seeds", "debug"}
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("category %d = %s, want %s", i, cats[i], want[i])
		}
	}

	if n := len(reg.ByCategory("slice")); n != 3 {
		t.Errorf("slice overlays = %d, want 3", n)
	}
}
