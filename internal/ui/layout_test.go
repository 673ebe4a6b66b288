package ui

import (
	"testing"
)

func layoutRects(lay Layout) map[string]Rect {
	return map[string]Rect{
		"status":     lay.Status,
		"visualizer": lay.Visualizer,
		"tier1":      lay.Tier1,
		"tier2":      lay.Tier2,
	}
}

func overlaps(a, b Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func TestLayoutNoOverlapWithinBounds(t *testing.T) {
	sizes := []struct{ w, h int }{
		{70, 20}, {80, 24}, {100, 30}, {200, 60}, {70, 21}, {71, 20},
	}
	for _, size := range sizes {
		lay := ComputeLayout(size.w, size.h, AllVisible(), 0.45)
		rects := layoutRects(lay)
		for name, r := range rects {
			if !r.Visible {
				continue
			}
			if r.X < 0 || r.Y < 0 || r.X+r.Width > size.w || r.Y+r.Height > size.h {
				t.Errorf("%dx%d: %s out of bounds: %+v", size.w, size.h, name, r)
			}
		}
		names := []string{"status", "visualizer", "tier1", "tier2"}
		for i := range names {
			for j := i + 1; j < len(names); j++ {
				a, b := rects[names[i]], rects[names[j]]
				if a.Visible && b.Visible && overlaps(a, b) {
					t.Errorf("%dx%d: %s overlaps %s", size.w, size.h, names[i], names[j])
				}
			}
		}
	}
}

func TestLayoutToggles(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		toggles := Toggles{
			Status:     mask&1 != 0,
			Tier1:      mask&2 != 0,
			Tier2:      mask&4 != 0,
			Visualizer: mask&8 != 0,
		}
		lay := ComputeLayout(120, 40, toggles, 0.45)
		want := map[string]bool{
			"status":     toggles.Status,
			"visualizer": toggles.Visualizer,
			"tier1":      toggles.Tier1,
			"tier2":      toggles.Tier2,
		}
		for name, r := range layoutRects(lay) {
			if r.Visible != want[name] {
				t.Errorf("mask %04b: %s visible = %v, want %v", mask, name, r.Visible, want[name])
			}
		}
	}
}

func TestLayoutSingleTierSpansFullWidth(t *testing.T) {
	lay := ComputeLayout(100, 30, Toggles{Status: true, Tier1: true, Visualizer: true}, 0.45)
	if !lay.Tier1.Visible || lay.Tier1.Width != 100 || lay.Tier1.X != 0 {
		t.Errorf("lone tier1 = %+v, want full width", lay.Tier1)
	}

	lay = ComputeLayout(100, 30, Toggles{Status: true, Tier2: true, Visualizer: true}, 0.45)
	if !lay.Tier2.Visible || lay.Tier2.Width != 100 || lay.Tier2.X != 0 {
		t.Errorf("lone tier2 = %+v, want full width", lay.Tier2)
	}
}

func TestLayoutDegradesOnTinyTerminal(t *testing.T) {
	lay := ComputeLayout(40, 6, AllVisible(), 0.45)
	if lay.Visualizer.Visible {
		t.Errorf("visualizer visible at height 6: %+v", lay.Visualizer)
	}
	if lay.Tier1.Visible || lay.Tier2.Visible {
		t.Errorf("tier panels visible at height 6")
	}
	// The layout itself never fails.
	lay = ComputeLayout(0, 0, AllVisible(), 0.45)
	if lay.Tier1.Visible || lay.Visualizer.Visible {
		t.Errorf("panels visible at 0x0")
	}
}

func TestLayoutStatusHeightFixed(t *testing.T) {
	lay := ComputeLayout(100, 30, AllVisible(), 0.45)
	if lay.Status.Height != 3 {
		t.Errorf("status height = %d, want 3", lay.Status.Height)
	}
	if lay.Visualizer.Y != 3 {
		t.Errorf("visualizer starts at %d, want 3", lay.Visualizer.Y)
	}

	lay = ComputeLayout(100, 30, Toggles{Tier1: true, Tier2: true, Visualizer: true}, 0.45)
	if lay.Visualizer.Y != 0 {
		t.Errorf("visualizer starts at %d with status hidden, want 0", lay.Visualizer.Y)
	}
}
