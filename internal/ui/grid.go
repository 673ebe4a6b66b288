package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Grid is an owned cell buffer the renderer draws a full frame into before
// blitting it to the screen. Writes outside the bounds clip silently, so
// drawing code never has to range-check the terminal edge.
type Grid struct {
	width  int
	height int
	cells  []gridCell
}

type gridCell struct {
	r     rune
	style tcell.Style
}

// NewGrid allocates a grid of the given size, filled with blanks.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{width: width, height: height, cells: make([]gridCell, width*height)}
	g.Clear()
	return g
}

// Size returns the grid dimensions.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// Clear resets every cell to a blank with the default style.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = gridCell{r: ' ', style: tcell.StyleDefault}
	}
}

// Set writes one rune. Out-of-bounds coordinates are ignored.
func (g *Grid) Set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = gridCell{r: r, style: style}
}

// Cell returns the rune at the given position, or a space when out of
// bounds.
func (g *Grid) Cell(x, y int) rune {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return ' '
	}
	return g.cells[y*g.width+x].r
}

// Text writes a string left to right, clipping at the right edge.
func (g *Grid) Text(x, y int, s string, style tcell.Style) {
	pos := 0
	for _, r := range s {
		g.Set(x+pos, y, r, style)
		pos++
	}
}

// TextCentered writes a string centered within [x, x+width).
func (g *Grid) TextCentered(x, y, width int, s string, style tcell.Style) {
	start := x + (width-len([]rune(s)))/2
	if start < x {
		start = x
	}
	g.Text(start, y, s, style)
}

// HLine draws a horizontal run of the given rune.
func (g *Grid) HLine(x, y, length int, r rune, style tcell.Style) {
	for i := 0; i < length; i++ {
		g.Set(x+i, y, r, style)
	}
}

// VLine draws a vertical run of the given rune.
func (g *Grid) VLine(x, y, length int, r rune, style tcell.Style) {
	for i := 0; i < length; i++ {
		g.Set(x, y+i, r, style)
	}
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
}

// Box draws a rounded-corner box. A non-empty title is placed on the top
// border with the box number rendered as a superscript digit, btop style.
func (g *Grid) Box(x, y, height, width int, title, boxNum string, style tcell.Style) {
	if height < 2 || width < 2 {
		return
	}
	g.Set(x, y, '╭', style)
	g.Set(x+width-1, y, '╮', style)
	g.Set(x, y+height-1, '╰', style)
	g.Set(x+width-1, y+height-1, '╯', style)
	g.HLine(x+1, y, width-2, '─', style)
	g.HLine(x+1, y+height-1, width-2, '─', style)
	g.VLine(x, y+1, height-2, '│', style)
	g.VLine(x+width-1, y+1, height-2, '│', style)

	if title == "" {
		return
	}
	label := title
	if boxNum != "" {
		sup := make([]rune, 0, len(boxNum))
		for _, ch := range boxNum {
			if s, ok := superscripts[ch]; ok {
				ch = s
			}
			sup = append(sup, ch)
		}
		label = string(sup) + title
	}
	label = " " + label + " "
	if len([]rune(label)) < width-4 {
		g.Text(x+2, y, label, style.Bold(true))
	}
}

// Blit copies the grid to a tcell screen. The caller still has to Show.
func (g *Grid) Blit(screen tcell.Screen) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.cells[y*g.width+x]
			screen.SetContent(x, y, c.r, nil, c.style)
		}
	}
}
