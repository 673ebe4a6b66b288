package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ironfly/internal/store"
)

// CalendarSource yields candidate symbols reporting earnings in the scan
// window (today's post-market through tomorrow's pre-market).
type CalendarSource interface {
	Name() string
	Upcoming(ctx context.Context) ([]string, error)
}

// ---------------------------------------------------------------------------
// Parquet earnings dump
// ---------------------------------------------------------------------------

var _ CalendarSource = (*ParquetCalendar)(nil)

// ParquetCalendar reads an earnings-calendar Parquet dump from disk.
type ParquetCalendar struct {
	path string
	now  func() time.Time
	log  *slog.Logger
}

// NewParquetCalendar creates a calendar source over the dump at path.
func NewParquetCalendar(path string, log *slog.Logger) *ParquetCalendar {
	return &ParquetCalendar{path: path, now: time.Now, log: log.With("calendar", "parquet")}
}

// Name returns the source identifier.
func (p *ParquetCalendar) Name() string { return "parquet" }

// Upcoming returns symbols whose report date falls in the scan window.
func (p *ParquetCalendar) Upcoming(_ context.Context) ([]string, error) {
	rows, err := store.ReadEarningsCalendar(p.path)
	if err != nil {
		return nil, fmt.Errorf("reading earnings calendar: %w", err)
	}

	today := p.now().Format("2006-01-02")
	tomorrow := p.now().AddDate(0, 0, 1).Format("2006-01-02")

	var symbols []string
	for _, r := range rows {
		// Today's post-market reporters and tomorrow's pre-market ones.
		if (r.ReportDate == today && r.Session != "pre") ||
			(r.ReportDate == tomorrow && r.Session != "post") {
			symbols = append(symbols, r.Symbol)
		}
	}
	p.log.Debug("calendar window", "today", today, "symbols", len(symbols))
	return symbols, nil
}

// ---------------------------------------------------------------------------
// Static list
// ---------------------------------------------------------------------------

var _ CalendarSource = (*StaticCalendar)(nil)

// StaticCalendar serves a fixed symbol list from configuration.
type StaticCalendar struct {
	symbols []string
}

// NewStaticCalendar creates a calendar source over the given symbols.
func NewStaticCalendar(symbols []string) *StaticCalendar {
	return &StaticCalendar{symbols: symbols}
}

// Name returns the source identifier.
func (s *StaticCalendar) Name() string { return "static" }

// Upcoming returns the configured list.
func (s *StaticCalendar) Upcoming(_ context.Context) ([]string, error) {
	return s.symbols, nil
}

// ---------------------------------------------------------------------------
// Merging
// ---------------------------------------------------------------------------

// MergeCandidates case-normalizes and deduplicates symbols from all
// sources, preserving first-seen order. A failing source is logged and
// skipped rather than failing the merge, as long as at least one source
// succeeds.
func MergeCandidates(ctx context.Context, sources []CalendarSource, log *slog.Logger) ([]string, error) {
	seen := make(map[string]bool)
	var merged []string
	succeeded := 0

	for _, src := range sources {
		symbols, err := src.Upcoming(ctx)
		if err != nil {
			log.Warn("calendar source failed", "source", src.Name(), "error", err)
			continue
		}
		succeeded++
		for _, s := range symbols {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}

	if succeeded == 0 && len(sources) > 0 {
		return nil, fmt.Errorf("all %d calendar sources failed", len(sources))
	}
	return merged, nil
}
