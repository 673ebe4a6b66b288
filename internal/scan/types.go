// Package scan implements the earnings scan pipeline: candidate discovery
// from earnings-calendar sources, per-ticker options analysis, tier
// classification, and iron-fly strike construction.
package scan

import (
	"context"
	"time"
)

// MetricSet holds the computed metrics for a single candidate. Optional
// metrics use pointer fields so renderers can test presence without
// sentinel values.
type MetricSet struct {
	Price         float64
	Volume        float64 // 30-day average daily volume
	WinRate       float64 // percentage
	WinQuarters   int
	IVRVRatio     float64
	TermStructure float64 // term-structure slope
	Tier          int     // 1 or 2

	FloatRatio          *float64
	ExpectedMovePct     *float64
	ExpectedMoveDollars *float64
}

// NearMiss pairs a rejected candidate with the reason it failed.
type NearMiss struct {
	Symbol string
	Reason string
}

// Result is the outcome of one scan cycle. Recommended preserves scan
// order; every recommended symbol has an entry in Metrics.
type Result struct {
	Recommended []string
	NearMisses  []NearMiss
	Metrics     map[string]MetricSet
}

// StrategyDetail holds the four-legged iron-fly parameters for one
// candidate.
type StrategyDetail struct {
	Symbol     string
	Expiration string

	LongPutStrike   float64
	ShortPutStrike  float64
	ShortCallStrike float64
	LongCallStrike  float64

	LongPutPremium   float64
	ShortPutPremium  float64
	ShortCallPremium float64
	LongCallPremium  float64

	TotalCredit float64
	TotalDebit  float64
	NetCredit   float64

	MaxProfit      float64
	MaxLoss        float64
	LowerBreakeven float64
	UpperBreakeven float64
	RiskReward     float64
}

// Scanner is the contract the monitor consumes: a repeatable scan call and
// an on-demand strategy-detail call.
type Scanner interface {
	Scan(ctx context.Context) (*Result, error)
	StrategyDetail(ctx context.Context, symbol string) (*StrategyDetail, error)
}

// Bar is a single daily OHLCV bar.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// MarketData supplies the price history the analyzer needs.
type MarketData interface {
	// DailyBars returns up to `days` most recent daily bars for the
	// symbol, oldest first.
	DailyBars(ctx context.Context, symbol string, days int) ([]Bar, error)
}

// OptionQuote is one strike row of an options chain.
type OptionQuote struct {
	Strike float64
	Bid    float64
	Ask    float64
	IV     float64
}

// Chain holds the calls and puts for one expiration, strikes ascending.
type Chain struct {
	Expiration time.Time
	Calls      []OptionQuote
	Puts       []OptionQuote
}

// ChainSource supplies options chains for a symbol.
type ChainSource interface {
	Expirations(ctx context.Context, symbol string) ([]time.Time, error)
	Chain(ctx context.Context, symbol string, expiration time.Time) (*Chain, error)
}

// Mid returns the bid/ask midpoint.
func (q OptionQuote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}
