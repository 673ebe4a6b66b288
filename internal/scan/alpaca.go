package scan

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"ironfly/internal/util"
)

// ---------------------------------------------------------------------------
// Alpaca-backed market data
// ---------------------------------------------------------------------------

var _ MarketData = (*AlpacaMarketData)(nil)

// AlpacaMarketData fetches daily bars from the Alpaca market-data API,
// rate-limited and retried.
type AlpacaMarketData struct {
	client  *marketdata.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewAlpacaMarketData creates a market-data source with the given Alpaca
// credentials.
func NewAlpacaMarketData(apiKey, apiSecret, dataURL string, rateLimitPerMin int, log *slog.Logger) *AlpacaMarketData {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaMarketData{
		client:  marketdata.NewClient(opts),
		limiter: util.NewRateLimiter(rateLimitPerMin),
		log:     log.With("source", "alpaca"),
	}
}

// DailyBars returns up to `days` most recent daily bars, oldest first.
func (a *AlpacaMarketData) DailyBars(ctx context.Context, symbol string, days int) ([]Bar, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	end := time.Now()
	// Calendar window padded for weekends/holidays.
	start := end.AddDate(0, 0, -(days*7/5 + 10))

	var alpacaBars []marketdata.Bar
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		var err error
		alpacaBars, err = a.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
			Feed:      "iex",
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, Bar{
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	a.log.Debug("fetched daily bars", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

// ---------------------------------------------------------------------------
// Simulated market data
// ---------------------------------------------------------------------------

var _ MarketData = (*SimMarketData)(nil)

// SimMarketData generates deterministic random-walk price history seeded by
// symbol, used when no Alpaca credentials are configured and in tests.
type SimMarketData struct {
	now func() time.Time
}

// NewSimMarketData creates a simulated market-data source.
func NewSimMarketData() *SimMarketData {
	return &SimMarketData{now: time.Now}
}

// FloatRatio derives a deterministic float/market-cap ratio per symbol.
// Roughly a third of symbols report no float data, mirroring the gaps in
// real fundamentals feeds.
func (s *SimMarketData) FloatRatio(_ context.Context, symbol string) (float64, bool) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToUpper(symbol)))
	v := h.Sum32()
	if v%3 == 0 {
		return 0, false
	}
	return 0.2 + float64(v%600)/1000, true
}

// DailyBars synthesizes a bar series ending today, oldest first.
func (s *SimMarketData) DailyBars(_ context.Context, symbol string, days int) ([]Bar, error) {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	state := h.Sum64() | 1

	next := func() float64 {
		// xorshift64, mapped to [0,1).
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return float64(state%1_000_000) / 1_000_000
	}

	price := 20 + next()*280
	dailyVol := 0.015 + next()*0.025
	baseVolume := 1e6 + next()*9e6

	day := s.now().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	bars := make([]Bar, 0, days)
	for i := 0; i < days; i++ {
		day = day.AddDate(0, 0, 1)
		// Approximate a normal shock from the sum of uniforms.
		shock := (next() + next() + next() - 1.5) * dailyVol * 2
		open := price
		price = price * (1 + shock)
		if price < 1 {
			price = 1
		}
		hi := math.Max(open, price) * (1 + next()*dailyVol)
		lo := math.Min(open, price) * (1 - next()*dailyVol)
		bars = append(bars, Bar{
			Timestamp: day,
			Open:      open,
			High:      hi,
			Low:       lo,
			Close:     price,
			Volume:    int64(baseVolume * (0.5 + next())),
		})
	}
	return bars, nil
}
