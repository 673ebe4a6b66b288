package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"ironfly/internal/scan"
)

// DrawVisualizer renders the trade-visualizer panel: the payoff graph on
// the left and the per-leg breakdown on the right. detail may be nil while
// the fetch for the current selection is still in flight; detailErr
// carries a fetch failure to show inside the panel instead of a curve.
func DrawVisualizer(g *Grid, panel Rect, selected string, m scan.MetricSet, detail *scan.StrategyDetail, detailErr string, th Theme) {
	if !panel.Visible {
		return
	}
	g.Box(panel.X, panel.Y, panel.Height, panel.Width, "trade visualizer", "4", th.Header)

	midY := panel.Y + panel.Height/2
	switch {
	case selected == "":
		g.TextCentered(panel.X, midY, panel.Width, "Select a ticker to view iron fly trade details", th.Text)
		return
	case detailErr != "":
		msg := fmt.Sprintf("Error calculating iron fly for %s: %s", selected, detailErr)
		g.TextCentered(panel.X, midY, panel.Width, msg, th.Error)
		return
	case detail == nil:
		g.TextCentered(panel.X, midY, panel.Width, fmt.Sprintf("Fetching iron fly for %s...", selected), th.Text)
		return
	}

	y := panel.Y + 1
	x := panel.X + 2
	inner := panel.Width - 4

	g.Text(x, y, fmt.Sprintf("%s Iron Fly - Exp: %s", selected, detail.Expiration), th.Text.Bold(true))
	y++

	graphHeight := min(panel.Height-4, 10)
	graphWidth := inner/2 - 4
	DrawPayoffGraph(g, x, y, graphHeight, graphWidth, PayoffParams{
		CurrentPrice: m.Price,
		LongPut:      detail.LongPutStrike,
		ShortPut:     detail.ShortPutStrike,
		ShortCall:    detail.ShortCallStrike,
		LongCall:     detail.LongCallStrike,
		NetCredit:    detail.NetCredit,
		MaxProfit:    detail.MaxProfit,
		MaxLoss:      detail.MaxLoss,
	}, th)

	detailsX := x + graphWidth + 4
	detailsY := y
	bottom := panel.Y + panel.Height - 1

	legs := []struct {
		name    string
		strike  float64
		premium float64
		style   tcell.Style
	}{
		{"Long Put", detail.LongPutStrike, detail.LongPutPremium, th.Long},
		{"Short Put", detail.ShortPutStrike, detail.ShortPutPremium, th.Short},
		{"Short Call", detail.ShortCallStrike, detail.ShortCallPremium, th.Short},
		{"Long Call", detail.LongCallStrike, detail.LongCallPremium, th.Long},
	}
	for _, leg := range legs {
		if detailsY >= bottom {
			break
		}
		g.Text(detailsX, detailsY, fmt.Sprintf("%s: Strike $%.2f, Premium $%.2f", leg.name, leg.strike, leg.premium), leg.style)
		detailsY++
	}
	detailsY++

	summary := []string{
		fmt.Sprintf("Net Credit: $%.2f", detail.NetCredit),
		fmt.Sprintf("Max Profit: $%.2f", detail.MaxProfit),
		fmt.Sprintf("Max Risk: $%.2f", detail.MaxLoss),
		fmt.Sprintf("Break-even: $%.2f - $%.2f", detail.LowerBreakeven, detail.UpperBreakeven),
		fmt.Sprintf("Risk:Reward: %.2f:1", detail.RiskReward),
	}
	for _, line := range summary {
		if detailsY >= bottom {
			break
		}
		g.Text(detailsX, detailsY, line, th.Text)
		detailsY++
	}
}
