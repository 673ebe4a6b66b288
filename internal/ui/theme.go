// Package ui renders the dashboard onto a bounded character grid: titled
// boxes, tiered candidate cards, the payoff diagram, and the mouse
// hit-testing that maps clicks back to cards.
package ui

import (
	"github.com/gdamore/tcell/v2"

	"ironfly/internal/config"
)

// Theme holds the resolved styles for every element the dashboard draws.
// It is built once at startup from the configured palette and passed
// explicitly to the drawing code.
type Theme struct {
	Tier1  tcell.Style
	Tier2  tcell.Style
	Header tcell.Style
	Text   tcell.Style
	Error  tcell.Style
	Long   tcell.Style
	Short  tcell.Style
	Profit tcell.Style
	Loss   tcell.Style
	Border tcell.Style
}

// NewTheme resolves palette color names into tcell styles. Unknown names
// fall back to the terminal default color.
func NewTheme(p config.Palette) Theme {
	fg := func(name string) tcell.Style {
		c, ok := tcell.ColorNames[name]
		if !ok {
			c = tcell.ColorDefault
		}
		return tcell.StyleDefault.Foreground(c)
	}
	return Theme{
		Tier1:  fg(p.Tier1),
		Tier2:  fg(p.Tier2),
		Header: fg(p.Header),
		Text:   fg(p.Text),
		Error:  fg(p.Error),
		Long:   fg(p.Long),
		Short:  fg(p.Short),
		Profit: fg(p.Profit),
		Loss:   fg(p.Loss),
		Border: fg(p.Border),
	}
}
