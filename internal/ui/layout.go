package ui

// Rect is an axis-aligned box in grid coordinates. A rect whose Visible
// flag is false must not be drawn into, even when its panel is toggled on:
// the layout collapses panels that cannot meet their minimum height.
type Rect struct {
	X       int
	Y       int
	Height  int
	Width   int
	Visible bool
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return r.Visible && x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Toggles holds the per-panel visibility switches, keyed 1-4 on the
// keyboard: status, tier 1, tier 2, visualizer.
type Toggles struct {
	Status     bool
	Tier1      bool
	Tier2      bool
	Visualizer bool
}

// AllVisible returns toggles with every panel on.
func AllVisible() Toggles {
	return Toggles{Status: true, Tier1: true, Tier2: true, Visualizer: true}
}

// Layout holds the computed rectangle for every panel of one frame. The
// two tier panels share a vertical band; when only one is visible it spans
// the full width.
type Layout struct {
	Status     Rect
	Visualizer Rect
	Tier1      Rect
	Tier2      Rect
}

const (
	statusHeight        = 3
	minVisualizerHeight = 8
	minTierHeight       = 6
)

// ComputeLayout derives panel rectangles from the terminal size, the
// visibility toggles, and the visualizer height ratio. It never fails:
// when the terminal cannot fit a panel above its minimum height, that
// panel comes back with Visible false for this frame.
func ComputeLayout(width, height int, toggles Toggles, visualizerRatio float64) Layout {
	var lay Layout

	contentStart := 0
	if toggles.Status {
		lay.Status = Rect{X: 0, Y: 0, Height: statusHeight, Width: width, Visible: true}
		contentStart = statusHeight
	}

	available := height - contentStart

	visualizerHeight := 0
	if toggles.Visualizer {
		visualizerHeight = int(float64(available) * visualizerRatio)
		if visualizerHeight < minVisualizerHeight {
			visualizerHeight = minVisualizerHeight
		}
		if visualizerHeight > available {
			// Cannot fit this frame.
			visualizerHeight = 0
		}
	}
	lay.Visualizer = Rect{
		X:       0,
		Y:       contentStart,
		Height:  visualizerHeight,
		Width:   width,
		Visible: visualizerHeight > 0,
	}

	tiersY := contentStart + visualizerHeight
	tiersHeight := available - visualizerHeight
	if tiersHeight < minTierHeight {
		tiersHeight = 0
	}

	colWidth := width / 2
	tier1 := Rect{X: 0, Y: tiersY, Height: tiersHeight, Width: colWidth}
	tier2 := Rect{X: colWidth, Y: tiersY, Height: tiersHeight, Width: width - colWidth}

	// A lone tier panel claims the full width.
	switch {
	case toggles.Tier1 && !toggles.Tier2:
		tier1.Width = width
	case toggles.Tier2 && !toggles.Tier1:
		tier2.X = 0
		tier2.Width = width
	}

	tier1.Visible = toggles.Tier1 && tiersHeight > 0
	tier2.Visible = toggles.Tier2 && tiersHeight > 0
	lay.Tier1 = tier1
	lay.Tier2 = tier2

	return lay
}
