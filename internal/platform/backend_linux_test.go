//go:build linux

package platform

import (
	"testing"

	"github.com/1broseidon/ringlight/internal/x11"
)

func TestScreenFromMonitor(t *testing.T) {
	got := screenFromMonitor(x11.Monitor{ID: 77, Name: "DP-1", X: 1920, Y: 0, Width: 2560, Height: 1440, TopInset: 32, Scale: 1.5})
	want := ScreenDescriptor{
		ID:       77,
		Name:     "DP-1",
		Frame:    Rect{X: 1920, Y: 0, Width: 2560, Height: 1440},
		TopInset: 32,
		Scale:    1.5,
	}
	if got != want {
		t.Fatalf("screenFromMonitor() = %+v, want %+v", got, want)
	}
}

func TestSortScreensLeftToRight(t *testing.T) {
	screens := []ScreenDescriptor{
		{ID: 3, Frame: Rect{X: 1920, Y: 0}},
		{ID: 1, Frame: Rect{X: 0, Y: 1080}},
		{ID: 2, Frame: Rect{X: 0, Y: 0}},
		{ID: 4, Frame: Rect{X: 1920, Y: 0}},
	}
	sortScreens(screens)

	order := []DisplayID{2, 1, 3, 4}
	for i, id := range order {
		if screens[i].ID != id {
			t.Fatalf("position %d = display %d, want %d", i, screens[i].ID, id)
		}
	}
}

func TestRectString(t *testing.T) {
	if got := (Rect{X: -10, Y: 5, Width: 800, Height: 600}).String(); got != "800x600+-10+5" {
		t.Fatalf("Rect.String() = %q", got)
	}
}
