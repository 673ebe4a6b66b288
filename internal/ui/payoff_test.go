package ui

import (
	"strings"
	"testing"

	"ironfly/internal/config"
)

func testTheme() Theme {
	return NewTheme(config.Default().Monitor.Palette)
}

func gridRow(g *Grid, y int) string {
	w, _ := g.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(g.Cell(x, y))
	}
	return b.String()
}

func gridContains(g *Grid, r rune) bool {
	w, h := g.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.Cell(x, y) == r {
				return true
			}
		}
	}
	return false
}

func standardParams() PayoffParams {
	return PayoffParams{
		CurrentPrice: 100,
		LongPut:      95,
		ShortPut:     100,
		ShortCall:    105,
		LongCall:     110,
		NetCredit:    3,
		MaxProfit:    3,
		MaxLoss:      2,
	}
}

func TestDrawPayoffGraphDrawsCurve(t *testing.T) {
	g := NewGrid(60, 16)
	DrawPayoffGraph(g, 8, 1, 14, 50, standardParams(), testTheme())

	if !gridContains(g, '•') {
		t.Error("no curve points drawn")
	}
	// Strike verticals and the current-price marker.
	if !gridContains(g, '│') {
		t.Error("no strike markers drawn")
	}
	if !gridContains(g, '┊') {
		t.Error("no current-price marker drawn")
	}
	// Frame corners.
	if g.Cell(8, 1) != '┌' || g.Cell(57, 14) != '┘' {
		t.Errorf("frame corners missing: %q %q", g.Cell(8, 1), g.Cell(57, 14))
	}
	// Axis value labels sit left of the frame.
	found := false
	for y := 0; y < 16; y++ {
		if strings.Contains(gridRow(g, y), "$") {
			found = true
			break
		}
	}
	if !found {
		t.Error("no payoff value labels drawn")
	}
}

func TestDrawPayoffGraphDegenerateInputs(t *testing.T) {
	th := testTheme()
	cases := []PayoffParams{
		{},                       // all zero
		{CurrentPrice: 100},      // zero strikes
		{CurrentPrice: 100, LongPut: 100, ShortPut: 100, ShortCall: 100, LongCall: 100}, // flat strikes
		{CurrentPrice: 100, LongPut: 110, ShortPut: 105, ShortCall: 100, LongCall: 95, NetCredit: 3}, // inverted
	}
	for i, p := range cases {
		g := NewGrid(40, 12)
		// Must not panic; the frame is always drawn.
		DrawPayoffGraph(g, 6, 0, 12, 30, p, th)
		if g.Cell(6, 0) != '┌' {
			t.Errorf("case %d: frame not drawn", i)
		}
	}
}

func TestDrawPayoffGraphTooSmallSkips(t *testing.T) {
	g := NewGrid(20, 6)
	DrawPayoffGraph(g, 0, 0, 2, 4, standardParams(), testTheme())
	if gridContains(g, '┌') {
		t.Error("drew into a rectangle below the minimum size")
	}
}

func TestGridClipsSilently(t *testing.T) {
	g := NewGrid(10, 4)
	th := testTheme()

	g.Text(-5, 0, "offscreen", th.Text)
	g.Text(8, 0, "overhang", th.Text)
	g.Set(100, 100, 'x', th.Text)
	g.VLine(3, -2, 10, '|', th.Text)
	g.Box(5, 1, 10, 10, "clipped", "9", th.Border)

	if got := g.Cell(8, 0); got != 'o' {
		t.Errorf("cell (8,0) = %q, want start of overhang", got)
	}
	if got := g.Cell(9, 0); got != 'v' {
		t.Errorf("cell (9,0) = %q", got)
	}
	// Nothing outside the grid is reachable; Cell is the only probe and
	// must answer a blank.
	if got := g.Cell(50, 50); got != ' ' {
		t.Errorf("out-of-bounds cell = %q", got)
	}
}

func TestBoxTitleSuperscript(t *testing.T) {
	g := NewGrid(40, 6)
	g.Box(0, 0, 5, 30, "tier 1 trades", "2", testTheme().Border)
	row := gridRow(g, 0)
	if !strings.Contains(row, "²tier 1 trades") {
		t.Errorf("title row = %q", row)
	}
	if g.Cell(0, 0) != '╭' || g.Cell(29, 4) != '╯' {
		t.Error("rounded corners missing")
	}
}
