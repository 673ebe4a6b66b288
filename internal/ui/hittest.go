package ui

import (
	"ironfly/internal/scan"
)

// HitTest maps a pointer click to the candidate card under it. It re-runs
// the card packer against the current layout rather than consulting a
// stored index, so a hit is correct by construction for whatever the last
// frame drew. Returns the symbol, its tier (1 or 2), and whether anything
// was hit.
func HitTest(x, y int, lay Layout, tier1, tier2 []string, metrics map[string]scan.MetricSet) (string, int, bool) {
	if sym, ok := hitPanel(x, y, lay.Tier1, tier1, metrics, TierCardSpec(1)); ok {
		return sym, 1, true
	}
	if sym, ok := hitPanel(x, y, lay.Tier2, tier2, metrics, TierCardSpec(2)); ok {
		return sym, 2, true
	}
	return "", 0, false
}

func hitPanel(x, y int, panel Rect, symbols []string, metrics map[string]scan.MetricSet, spec CardSpec) (string, bool) {
	if !panel.Contains(x, y) {
		return "", false
	}
	// The panel's rightmost leftover margin (width mod slot width) clamps
	// onto the last column, so clicks there still select its cards.
	columns := panel.Width / spec.SlotWidth
	if columns < 1 {
		columns = 1
	}
	col := (x - panel.X) / spec.SlotWidth
	if col > columns-1 {
		col = columns - 1
	}
	for _, p := range PackCards(panel, symbols, metrics, spec) {
		if p.Column == col && y >= p.Y && y < p.Y+p.Height {
			return p.Symbol, true
		}
	}
	return "", false
}
