package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"ironfly/internal/scan"
)

// PayoffParams feeds the iron-fly payoff graph.
type PayoffParams struct {
	CurrentPrice float64
	LongPut      float64
	ShortPut     float64
	ShortCall    float64
	LongCall     float64
	NetCredit    float64
	MaxProfit    float64
	MaxLoss      float64
}

// payoffWindow resolves the price domain and payoff range for the graph,
// widening degenerate inputs instead of failing. ok is false only when no
// meaningful window can be constructed at all.
func payoffWindow(p PayoffParams) (minPrice, maxPrice, minPnl, maxPnl float64, ok bool) {
	minPrice = min(p.LongPut, p.ShortPut) * 0.9
	maxPrice = max(p.ShortCall, p.LongCall) * 1.1
	if minPrice >= maxPrice || minPrice <= 0 {
		minPrice = p.CurrentPrice * 0.8
		maxPrice = p.CurrentPrice * 1.2
	}

	maxLoss := p.MaxLoss
	if maxLoss <= 0 {
		maxLoss = 1.0
	}
	maxProfit := p.MaxProfit
	if maxProfit <= 0 {
		maxProfit = p.NetCredit
	}
	minPnl = -maxLoss
	maxPnl = maxProfit
	if minPnl >= maxPnl {
		minPnl = -p.NetCredit * 2
		maxPnl = p.NetCredit * 1.2
	}

	ok = maxPrice > minPrice && maxPnl > minPnl
	return
}

// DrawPayoffGraph renders the iron-fly payoff curve into a frame at the
// given rectangle: the curve itself, a zero line when zero is in range,
// vertical markers at the strikes and the current price, and value labels
// at the range extremes. Degenerate geometry skips the affected element
// rather than failing the frame.
func DrawPayoffGraph(g *Grid, x, y, height, width int, p PayoffParams, th Theme) {
	if height < 4 || width < 6 {
		return
	}

	g.Set(x, y, '┌', th.Border)
	g.Set(x+width-1, y, '┐', th.Border)
	g.Set(x, y+height-1, '└', th.Border)
	g.Set(x+width-1, y+height-1, '┘', th.Border)
	g.HLine(x+1, y, width-2, '─', th.Border)
	g.HLine(x+1, y+height-1, width-2, '─', th.Border)
	g.VLine(x, y+1, height-2, '│', th.Border)
	g.VLine(x+width-1, y+1, height-2, '│', th.Border)

	if x > 5 {
		g.Text(x-5, y, "P&L", th.Text)
	}
	g.TextCentered(x, y+height-1, width, "Price", th.Text)

	minPrice, maxPrice, minPnl, maxPnl, ok := payoffWindow(p)
	if !ok {
		return
	}
	priceRange := maxPrice - minPrice
	pnlRange := maxPnl - minPnl

	plotRows := height - 3
	if plotRows < 1 {
		return
	}
	rowOf := func(pnl float64) int {
		return y + height - 2 - int((pnl-minPnl)/pnlRange*float64(plotRows))
	}
	colOf := func(price float64) int {
		return x + 1 + int((price-minPrice)/priceRange*float64(width-4))
	}

	// Zero-payoff line.
	if minPnl < 0 && 0 < maxPnl {
		if zy := rowOf(0); y < zy && zy < y+height-1 {
			g.HLine(x+1, zy, width-2, '─', th.Border)
		}
	}

	// Strike and current-price verticals.
	type marker struct {
		price float64
		r     rune
		style tcell.Style
	}
	markers := []marker{
		{p.LongPut, '│', th.Long},
		{p.ShortPut, '│', th.Short},
		{p.CurrentPrice, '┊', th.Text.Bold(true)},
		{p.ShortCall, '│', th.Short},
		{p.LongCall, '│', th.Long},
	}
	for _, m := range markers {
		if m.price < minPrice || m.price > maxPrice {
			continue
		}
		mx := colOf(m.price)
		if mx <= x || mx >= x+width-1 {
			continue
		}
		g.VLine(mx, y+1, height-2, m.r, m.style)
	}

	// Sample the payoff across the plot width.
	samples := width - 4
	if samples < 2 {
		return
	}
	prevRow := -1
	for i := 0; i < samples; i++ {
		price := minPrice + float64(i)/float64(samples-1)*priceRange
		pnl := scan.Payoff(price, p.LongPut, p.ShortPut, p.ShortCall, p.LongCall, p.NetCredit)
		row := rowOf(pnl)
		px := x + 2 + i
		if row <= y || row >= y+height-1 || px >= x+width-1 {
			continue
		}

		// Bridge vertical gaps so steep ramps stay connected, without
		// overwriting strike markers.
		if prevRow >= 0 && abs(prevRow-row) > 1 {
			step := 1
			if prevRow > row {
				step = -1
			}
			for ly := prevRow + step; ly != row; ly += step {
				if ly > y && ly < y+height-1 && g.Cell(px, ly) == ' ' {
					g.Set(px, ly, '┊', th.Text)
				}
			}
		}

		style := th.Text
		if pnl > 0 {
			style = th.Profit
		} else if pnl < 0 {
			style = th.Loss
		}
		g.Set(px, row, '•', style)
		prevRow = row
	}

	// Value labels at the extremes and at zero, left of the frame.
	for _, pnl := range []float64{minPnl, 0, maxPnl} {
		if pnl < minPnl || pnl > maxPnl {
			continue
		}
		row := rowOf(pnl)
		if row <= y || row >= y+height-1 || x <= 7 {
			continue
		}
		label := fmt.Sprintf("$%.2f", pnl)
		g.Text(x-len(label)-1, row, label, th.Text)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
