package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"ironfly/internal/scan"
)

// CardSpec fixes the geometry of one tier's candidate cards. SlotWidth is
// the horizontal stride between columns (drawn width plus padding) and is
// also what the hit-tester divides by, so the two must never diverge.
type CardSpec struct {
	SlotWidth  int
	DrawWidth  int
	BaseHeight int
}

// TierCardSpec returns the card geometry for a tier panel. Tier 1 cards
// are wider than tier 2 cards.
func TierCardSpec(tier int) CardSpec {
	if tier == 2 {
		return CardSpec{SlotWidth: 30, DrawWidth: 28, BaseHeight: 5}
	}
	return CardSpec{SlotWidth: 38, DrawWidth: 36, BaseHeight: 5}
}

// Height returns the rows one card occupies: the base plus one row per
// optional metric present.
func (s CardSpec) Height(m scan.MetricSet) int {
	h := s.BaseHeight
	if m.FloatRatio != nil {
		h++
	}
	if m.ExpectedMovePct != nil {
		h++
	}
	return h
}

// Placement locates one candidate card inside its tier panel.
type Placement struct {
	Symbol string
	Column int
	X      int
	Y      int
	Width  int
	Height int
}

// PackCards places candidate cards into a tier panel using round-robin
// multi-column flow. The column index advances per candidate that carries
// metrics, across all columns, while the overflow check is column-local:
// once a column runs out of rows, everything later assigned to it is
// skipped, never rewrapped into another column. Candidates missing from
// the metrics map are skipped without consuming a column slot.
func PackCards(panel Rect, symbols []string, metrics map[string]scan.MetricSet, spec CardSpec) []Placement {
	if !panel.Visible || panel.Width <= 0 || panel.Height <= 0 {
		return nil
	}

	columns := panel.Width / spec.SlotWidth
	if columns < 1 {
		columns = 1
	}
	bottom := panel.Y + panel.Height - 2

	cursors := make([]int, columns)
	exhausted := make([]bool, columns)
	for i := range cursors {
		cursors[i] = panel.Y + 1
	}

	var placements []Placement
	seen := 0
	for _, sym := range symbols {
		m, ok := metrics[sym]
		if !ok {
			continue
		}
		col := seen % columns
		seen++

		if exhausted[col] {
			continue
		}
		h := spec.Height(m)
		if cursors[col]+h > bottom {
			exhausted[col] = true
			continue
		}
		placements = append(placements, Placement{
			Symbol: sym,
			Column: col,
			X:      panel.X + col*spec.SlotWidth,
			Y:      cursors[col],
			Width:  spec.SlotWidth,
			Height: h,
		})
		cursors[col] += h
	}
	return placements
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

// clipLine truncates a line to fit inside a card of the given drawn width.
func clipLine(s string, drawWidth int) string {
	r := []rune(s)
	if len(r) <= drawWidth-2 {
		return s
	}
	if drawWidth < 6 {
		return string(r[:max(0, drawWidth-2)])
	}
	return string(r[:drawWidth-5]) + "..."
}

// DrawCard renders one candidate card at its placement: a titled box with
// the metric lines inside.
func DrawCard(g *Grid, p Placement, m scan.MetricSet, spec CardSpec, box, text tcell.Style) {
	g.Box(p.X, p.Y, p.Height, spec.DrawWidth, p.Symbol, "", box)

	y := p.Y + 1
	g.Text(p.X+1, y, clipLine(fmt.Sprintf("Price: $%.2f | Vol: %s", m.Price, FormatVolume(m.Volume)), spec.DrawWidth), text)
	y++
	g.Text(p.X+1, y, clipLine(fmt.Sprintf("IV/RV: %.2f | Term: %.3f", m.IVRVRatio, m.TermStructure), spec.DrawWidth), text)
	y++
	g.Text(p.X+1, y, clipLine(fmt.Sprintf("Winrate: %.1f%% over %d earnings", m.WinRate, m.WinQuarters), spec.DrawWidth), text)
	y++
	if m.FloatRatio != nil {
		g.Text(p.X+1, y, clipLine(fmt.Sprintf("Float Ratio: %.2f%%", *m.FloatRatio*100), spec.DrawWidth), text)
		y++
	}
	if m.ExpectedMovePct != nil {
		dollars := m.Price * *m.ExpectedMovePct / 100
		if m.ExpectedMoveDollars != nil {
			dollars = *m.ExpectedMoveDollars
		}
		line := fmt.Sprintf("EM: %.1f%% ($%.2f-$%.2f)",
			*m.ExpectedMovePct, m.Price-dollars, m.Price+dollars)
		g.Text(p.X+1, y, clipLine(line, spec.DrawWidth), text)
	}
}

// DrawTierPanel renders a tier panel: the container box, then the packed
// candidate cards, or a placeholder when the tier is empty.
func DrawTierPanel(g *Grid, panel Rect, tier int, symbols []string, metrics map[string]scan.MetricSet, th Theme) {
	if !panel.Visible {
		return
	}
	box := th.Tier1
	title := "tier 1 trades"
	boxNum := "2"
	if tier == 2 {
		box = th.Tier2
		title = "tier 2 trades"
		boxNum = "3"
	}
	g.Box(panel.X, panel.Y, panel.Height, panel.Width, title, boxNum, th.Border)

	spec := TierCardSpec(tier)
	placements := PackCards(panel, symbols, metrics, spec)
	if len(placements) == 0 {
		msg := fmt.Sprintf("No tier %d trades found", tier)
		g.TextCentered(panel.X, panel.Y+panel.Height/2, panel.Width, msg, th.Text)
		return
	}
	for _, p := range placements {
		DrawCard(g, p, metrics[p.Symbol], spec, box, th.Text)
	}
}
