package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"ironfly/internal/config"
	"ironfly/internal/scan"
	"ironfly/internal/ui"
)

const (
	minWidth  = 70
	minHeight = 20
)

// Monitor is the render loop: the single owner of the terminal and of all
// mutable dashboard state. It polls the refresher for the latest snapshot
// once per tick and never blocks on it.
type Monitor struct {
	screen    tcell.Screen
	refresher *Refresher
	theme     ui.Theme
	interval  time.Duration
	ratio     float64
	log       *slog.Logger

	toggles      ui.Toggles
	selected     string
	selectedTier int
	detail       *scan.StrategyDetail
	detailErr    string

	grid   *ui.Grid
	layout ui.Layout
}

// New builds a monitor over an initialized screen.
func New(screen tcell.Screen, refresher *Refresher, cfg config.MonitorConfig, log *slog.Logger) *Monitor {
	return &Monitor{
		screen:    screen,
		refresher: refresher,
		theme:     ui.NewTheme(cfg.Palette),
		interval:  time.Duration(cfg.RefreshSeconds) * time.Second,
		ratio:     cfg.DetailRatio,
		log:       log,
		toggles:   ui.AllVisible(),
	}
}

type detailResult struct {
	symbol string
	detail *scan.StrategyDetail
	err    error
}

// Run drives the dashboard until the quit key is pressed or the context is
// cancelled. The caller owns screen teardown.
func (m *Monitor) Run(ctx context.Context) error {
	m.screen.EnableMouse()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go m.screen.ChannelEvents(events, quit)

	detailCh := make(chan detailResult, 1)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastSnap := m.refresher.Latest()
	lastW, lastH := m.screen.Size()
	full := true

	m.render(lastSnap, true)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Rune() == 'q' || ev.Rune() == 'Q' || ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return nil
				case ev.Rune() == 'r' || ev.Rune() == 'R':
					m.refresher.TriggerRefresh()
					// The cached detail belongs to the pre-refresh
					// data; drop it and refetch for the selection.
					m.detail = nil
					m.detailErr = ""
					if m.selected != "" {
						m.fetchDetail(ctx, m.selected, detailCh)
					}
					full = true
				case ev.Rune() >= '1' && ev.Rune() <= '4':
					m.toggle(ev.Rune())
					full = true
				}
			case *tcell.EventResize:
				m.screen.Sync()
				full = true
			case *tcell.EventMouse:
				if ev.Buttons()&tcell.Button1 != 0 {
					x, y := ev.Position()
					if m.click(ctx, x, y, lastSnap, detailCh) {
						full = true
					}
				}
			}

		case res := <-detailCh:
			// A result for a superseded selection is stale; drop it.
			if res.symbol != m.selected {
				continue
			}
			m.detail = res.detail
			m.detailErr = ""
			if res.err != nil {
				m.detailErr = res.err.Error()
			}
			full = true

		case <-ticker.C:
		}

		w, h := m.screen.Size()
		snap := m.refresher.Latest()
		if w != lastW || h != lastH || snap != lastSnap {
			full = true
		}
		lastW, lastH = w, h
		lastSnap = snap

		m.render(snap, full)
		full = false
	}
}

// toggle flips one panel's visibility. Keys 1-4 map to status, tier 1,
// tier 2, visualizer.
func (m *Monitor) toggle(key rune) {
	switch key {
	case '1':
		m.toggles.Status = !m.toggles.Status
	case '2':
		m.toggles.Tier1 = !m.toggles.Tier1
	case '3':
		m.toggles.Tier2 = !m.toggles.Tier2
	case '4':
		m.toggles.Visualizer = !m.toggles.Visualizer
	}
}

// click runs the hit-tester against the current frame. On a hit it sets
// the selection, invalidates the cached detail, and starts an asynchronous
// fetch whose result arrives on detailCh.
func (m *Monitor) click(ctx context.Context, x, y int, snap *Snapshot, detailCh chan<- detailResult) bool {
	if snap == nil {
		return false
	}
	sym, tier, ok := ui.HitTest(x, y, m.layout, snap.Tier1, snap.Tier2, snap.Metrics)
	if !ok {
		return false
	}
	m.selected = sym
	m.selectedTier = tier
	m.detail = nil
	m.detailErr = ""
	m.log.Info("card selected", "symbol", sym, "tier", tier)
	m.fetchDetail(ctx, sym, detailCh)
	return true
}

// fetchDetail starts an asynchronous strategy-detail fetch whose result
// arrives on detailCh.
func (m *Monitor) fetchDetail(ctx context.Context, sym string, detailCh chan<- detailResult) {
	go func() {
		d, err := m.refresher.Detail(ctx, sym)
		select {
		case detailCh <- detailResult{symbol: sym, detail: d, err: err}:
		case <-ctx.Done():
		}
	}()
}

// render paints the frame. A full repaint rebuilds every panel from the
// snapshot; a partial one refreshes only the status countdown on the grid
// already drawn.
func (m *Monitor) render(snap *Snapshot, full bool) {
	w, h := m.screen.Size()

	if w < minWidth || h < minHeight {
		m.screen.Clear()
		warn := "Terminal too small. Please resize."
		for i, r := range warn {
			m.screen.SetContent(i, 0, r, nil, m.theme.Error)
		}
		m.screen.Show()
		m.grid = nil
		return
	}

	var captured time.Time
	if snap != nil {
		captured = snap.Captured
	}

	if !full && m.grid != nil {
		ui.DrawStatus(m.grid, m.layout.Status, captured, m.interval, time.Now(), m.theme)
		m.grid.Blit(m.screen)
		m.screen.Show()
		return
	}

	m.layout = ui.ComputeLayout(w, h, m.toggles, m.ratio)
	g := ui.NewGrid(w, h)

	ui.DrawStatus(g, m.layout.Status, captured, m.interval, time.Now(), m.theme)

	var selMetrics scan.MetricSet
	if snap != nil {
		selMetrics = snap.Metrics[m.selected]
		ui.DrawTierPanel(g, m.layout.Tier1, 1, snap.Tier1, snap.Metrics, m.theme)
		ui.DrawTierPanel(g, m.layout.Tier2, 2, snap.Tier2, snap.Metrics, m.theme)
	} else {
		ui.DrawTierPanel(g, m.layout.Tier1, 1, nil, nil, m.theme)
		ui.DrawTierPanel(g, m.layout.Tier2, 2, nil, nil, m.theme)
	}
	ui.DrawVisualizer(g, m.layout.Visualizer, m.selected, selMetrics, m.detail, m.detailErr, m.theme)

	g.TextCentered(0, h-1, w, "q quit | r refresh | 1-4 toggle panels | click a card", m.theme.Text)

	g.Blit(m.screen)
	m.screen.Show()
	m.grid = g
}
