package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"ironfly/internal/config"
	"ironfly/internal/store"
)

// winQuartersTarget is how many quarterly intervals the win-rate estimate
// samples when enough history exists.
const winQuartersTarget = 8

var _ Scanner = (*EarningsScanner)(nil)

// EarningsScanner implements the scan and strategy-detail contracts over a
// market-data source, a chain source, and one or more earnings calendars.
type EarningsScanner struct {
	md         MarketData
	chains     ChainSource
	sources    []CalendarSource
	allSources bool
	cache      *store.MetricsCache // nil disables caching
	th         Thresholds
	cfg        config.ScanConfig
	log        *slog.Logger
	now        func() time.Time
}

// FloatProvider is an optional MarketData capability: a float/market-cap
// ratio for the symbol, when the data source carries fundamentals.
type FloatProvider interface {
	FloatRatio(ctx context.Context, symbol string) (float64, bool)
}

// NewEarningsScanner wires a scanner from its collaborators. cache may be
// nil. When allSources is false only the first calendar source is consulted.
func NewEarningsScanner(md MarketData, chains ChainSource, sources []CalendarSource, allSources bool, cache *store.MetricsCache, cfg config.ScanConfig, log *slog.Logger) *EarningsScanner {
	return &EarningsScanner{
		md:         md,
		chains:     chains,
		sources:    sources,
		allSources: allSources,
		cache:      cache,
		th: Thresholds{
			MinAvgVolume:   cfg.MinAvgVolume,
			IVRVPass:       cfg.IVRVPass,
			IVRVNearMiss:   cfg.IVRVNearMiss,
			TermSlopePass:  cfg.TermSlopePass,
			TermSlopeTier2: cfg.TermSlopeTier2,
		},
		cfg: cfg,
		log: log.With("component", "scanner"),
		now: time.Now,
	}
}

// cachedAnalysis is the JSON payload stored in the metrics cache.
type cachedAnalysis struct {
	Metrics MetricSet `json:"metrics"`
	Verdict Verdict   `json:"verdict"`
}

// Scan gathers candidates from the calendar sources, analyzes each, and
// returns the recommended tickers with their metrics. Per-symbol analysis
// failures are logged and skipped; Scan only errors when candidate
// discovery itself fails.
func (s *EarningsScanner) Scan(ctx context.Context) (*Result, error) {
	sources := s.sources
	if !s.allSources && len(sources) > 1 {
		sources = sources[:1]
	}

	symbols, err := MergeCandidates(ctx, sources, s.log)
	if err != nil {
		return nil, fmt.Errorf("gathering candidates: %w", err)
	}
	s.log.Info("scan started", "candidates", len(symbols), "allSources", s.allSources)

	day := s.now().Format("2006-01-02")
	res := &Result{Metrics: make(map[string]MetricSet, len(symbols))}

	for _, sym := range symbols {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		m, v, err := s.analyzeCached(ctx, day, sym)
		if err != nil {
			s.log.Warn("analysis failed", "symbol", sym, "error", err)
			continue
		}

		switch {
		case v.Pass:
			res.Recommended = append(res.Recommended, sym)
			res.Metrics[sym] = m
		case v.NearMiss:
			res.NearMisses = append(res.NearMisses, NearMiss{Symbol: sym, Reason: v.Reason})
			res.Metrics[sym] = m
		}
	}

	if s.cache != nil {
		if err := s.cache.Prune(day); err != nil {
			s.log.Warn("cache prune failed", "error", err)
		}
	}

	s.log.Info("scan finished",
		"recommended", len(res.Recommended),
		"nearMisses", len(res.NearMisses))
	return res, nil
}

// analyzeCached wraps AnalyzeTicker with the day-scoped metrics cache.
func (s *EarningsScanner) analyzeCached(ctx context.Context, day, symbol string) (MetricSet, Verdict, error) {
	if s.cache != nil {
		if payload, ok, err := s.cache.Get(day, symbol); err == nil && ok {
			var ca cachedAnalysis
			if err := json.Unmarshal(payload, &ca); err == nil {
				return ca.Metrics, ca.Verdict, nil
			}
		}
	}

	m, v, err := s.AnalyzeTicker(ctx, symbol)
	if err != nil {
		return MetricSet{}, Verdict{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(cachedAnalysis{Metrics: m, Verdict: v}); err == nil {
			if err := s.cache.Put(day, symbol, payload); err != nil {
				s.log.Warn("cache write failed", "symbol", symbol, "error", err)
			}
		}
	}
	return m, v, nil
}

// AnalyzeTicker computes the full metric set and classification for one
// symbol.
func (s *EarningsScanner) AnalyzeTicker(ctx context.Context, symbol string) (MetricSet, Verdict, error) {
	days := s.cfg.HistoryDays
	if min := winQuartersTarget*63 + 1; days < min {
		days = min
	}
	bars, err := s.md.DailyBars(ctx, symbol, days)
	if err != nil {
		return MetricSet{}, Verdict{}, fmt.Errorf("price history: %w", err)
	}
	if len(bars) < s.cfg.VolatilityWindow+1 {
		return MetricSet{}, Verdict{}, fmt.Errorf("only %d bars for %s", len(bars), symbol)
	}

	price := bars[len(bars)-1].Close
	if price <= 0 {
		return MetricSet{}, Verdict{}, fmt.Errorf("non-positive price for %s", symbol)
	}

	avgVolume := averageVolume(bars, s.cfg.VolatilityWindow)
	rv := YangZhangVolatility(bars, s.cfg.VolatilityWindow, 252)

	exps, err := s.chains.Expirations(ctx, symbol)
	if err != nil {
		return MetricSet{}, Verdict{}, fmt.Errorf("expirations: %w", err)
	}
	if len(exps) == 0 {
		return MetricSet{}, Verdict{}, fmt.Errorf("no options for %s", symbol)
	}
	exps = FilterExpirations(exps, s.now(), s.cfg.ExpirationCutoffDays)

	var dtes []int
	var ivs []float64
	var straddle float64
	for i, exp := range exps {
		ch, err := s.chains.Chain(ctx, symbol, exp)
		if err != nil {
			s.log.Debug("chain fetch failed", "symbol", symbol, "expiration", exp, "error", err)
			continue
		}
		if len(ch.Calls) == 0 || len(ch.Puts) == 0 {
			continue
		}
		atmCall := nearestStrike(ch.Calls, price)
		atmPut := nearestStrike(ch.Puts, price)
		dte := int(exp.Sub(s.now()).Hours() / 24)
		dtes = append(dtes, dte)
		ivs = append(ivs, (atmCall.IV+atmPut.IV)/2)
		if i == 0 {
			straddle = atmCall.Mid() + atmPut.Mid()
		}
	}
	if len(dtes) < 2 {
		return MetricSet{}, Verdict{}, fmt.Errorf("not enough chain data for %s", symbol)
	}

	spline := BuildTermStructure(dtes, ivs)
	iv30 := spline(30)
	minDte := dtes[0]
	for _, d := range dtes[1:] {
		if d < minDte {
			minDte = d
		}
	}
	slope := 0.0
	if minDte < 45 {
		slope = (spline(45) - spline(float64(minDte))) / float64(45-minDte)
	}

	ivrv := 9999.0
	if rv > 0 && !math.IsNaN(rv) {
		ivrv = iv30 / rv
	}

	m := MetricSet{
		Price:         price,
		Volume:        avgVolume,
		IVRVRatio:     ivrv,
		TermStructure: slope,
	}

	if straddle > 0 {
		emPct := straddle / price * 100
		emDollars := straddle
		m.ExpectedMovePct = &emPct
		m.ExpectedMoveDollars = &emDollars
		m.WinRate, m.WinQuarters = winHistory(bars, emPct, winQuartersTarget)
	}

	if fp, ok := s.md.(FloatProvider); ok {
		if ratio, ok := fp.FloatRatio(ctx, symbol); ok {
			m.FloatRatio = &ratio
		}
	}

	v := Classify(avgVolume, ivrv, slope, s.th)
	m.Tier = v.Tier
	return m, v, nil
}

// StrategyDetail builds the recommended iron fly for one symbol using the
// nearest kept expiration.
func (s *EarningsScanner) StrategyDetail(ctx context.Context, symbol string) (*StrategyDetail, error) {
	bars, err := s.md.DailyBars(ctx, symbol, s.cfg.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}
	price := bars[len(bars)-1].Close

	exps, err := s.chains.Expirations(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("expirations: %w", err)
	}
	if len(exps) == 0 {
		return nil, fmt.Errorf("no options for %s", symbol)
	}
	exps = FilterExpirations(exps, s.now(), s.cfg.ExpirationCutoffDays)

	ch, err := s.chains.Chain(ctx, symbol, exps[0])
	if err != nil {
		return nil, fmt.Errorf("chain: %w", err)
	}
	return buildStrategy(symbol, price, ch)
}

// averageVolume is the mean daily volume over the trailing window.
func averageVolume(bars []Bar, window int) float64 {
	if len(bars) < window {
		window = len(bars)
	}
	if window == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars[len(bars)-window:] {
		sum += float64(b.Volume)
	}
	return sum / float64(window)
}
