package scan

import (
	"math"
	"sort"
	"time"
)

// ---------------------------------------------------------------------------
// Realized volatility
// ---------------------------------------------------------------------------

// YangZhangVolatility estimates annualized realized volatility from daily
// bars using the Yang-Zhang OHLC estimator over the trailing window. Falls
// back to the close-to-close estimator when there is not enough OHLC data.
func YangZhangVolatility(bars []Bar, window, tradingPeriods int) float64 {
	if len(bars) < window+1 {
		return CloseToCloseVolatility(bars, window, tradingPeriods)
	}

	// Use the most recent window+1 bars (one extra for the prior close).
	bars = bars[len(bars)-window-1:]

	var sumRS, sumOpen, sumClose float64
	n := float64(window)
	for i := 1; i < len(bars); i++ {
		b := bars[i]
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 || bars[i-1].Close <= 0 {
			return CloseToCloseVolatility(bars, window, tradingPeriods)
		}
		logHO := math.Log(b.High / b.Open)
		logLO := math.Log(b.Low / b.Open)
		logCO := math.Log(b.Close / b.Open)
		logOC := math.Log(b.Open / bars[i-1].Close)
		logCC := math.Log(b.Close / bars[i-1].Close)

		sumRS += logHO*(logHO-logCO) + logLO*(logLO-logCO)
		sumOpen += logOC * logOC
		sumClose += logCC * logCC
	}

	closeVol := sumClose / (n - 1)
	openVol := sumOpen / (n - 1)
	windowRS := sumRS / (n - 1)

	k := 0.34 / (1.34 + (n+1)/(n-1))
	v := openVol + k*closeVol + (1-k)*windowRS
	if v <= 0 || math.IsNaN(v) {
		return CloseToCloseVolatility(bars, window, tradingPeriods)
	}
	return math.Sqrt(v) * math.Sqrt(float64(tradingPeriods))
}

// CloseToCloseVolatility is the simple fallback estimator: stddev of daily
// log returns over the window, annualized.
func CloseToCloseVolatility(bars []Bar, window, tradingPeriods int) float64 {
	var returns []float64
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close <= 0 || bars[i].Close <= 0 {
			continue
		}
		returns = append(returns, math.Log(bars[i].Close/bars[i-1].Close))
	}
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	if len(returns) < 2 {
		return math.NaN()
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(ss / float64(len(returns)-1))
	return sd * math.Sqrt(float64(tradingPeriods))
}

// ---------------------------------------------------------------------------
// IV term structure
// ---------------------------------------------------------------------------

// BuildTermStructure returns a linear interpolator over (days-to-expiry,
// implied-vol) points, flat beyond the endpoints.
func BuildTermStructure(days []int, ivs []float64) func(float64) float64 {
	type pt struct {
		d  float64
		iv float64
	}
	pts := make([]pt, 0, len(days))
	for i := range days {
		pts = append(pts, pt{float64(days[i]), ivs[i]})
	}
	sort.Slice(pts, func(a, b int) bool { return pts[a].d < pts[b].d })

	return func(dte float64) float64 {
		if len(pts) == 0 {
			return math.NaN()
		}
		if dte <= pts[0].d {
			return pts[0].iv
		}
		if dte >= pts[len(pts)-1].d {
			return pts[len(pts)-1].iv
		}
		for i := 1; i < len(pts); i++ {
			if dte <= pts[i].d {
				span := pts[i].d - pts[i-1].d
				if span == 0 {
					return pts[i].iv
				}
				frac := (dte - pts[i-1].d) / span
				return pts[i-1].iv + frac*(pts[i].iv-pts[i-1].iv)
			}
		}
		return pts[len(pts)-1].iv
	}
}

// FilterExpirations keeps the sorted expirations up to and including the
// first one at least cutoffDays out. A same-day expiration is dropped when
// later ones exist.
func FilterExpirations(dates []time.Time, now time.Time, cutoffDays int) []time.Time {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Before(sorted[b]) })

	today := now.Truncate(24 * time.Hour)
	cutoff := today.AddDate(0, 0, cutoffDays)

	var kept []time.Time
	for i, d := range sorted {
		if !d.Before(cutoff) {
			kept = sorted[:i+1]
			break
		}
	}
	if kept == nil {
		kept = sorted
	}
	if len(kept) > 1 && kept[0].Truncate(24*time.Hour).Equal(today) {
		kept = kept[1:]
	}
	return kept
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Verdict is the analyzer's classification of a single candidate.
type Verdict struct {
	Pass     bool
	NearMiss bool
	Tier     int
	Reason   string
}

// Thresholds holds the pass/near-miss cutoffs the classifier applies.
type Thresholds struct {
	MinAvgVolume   float64
	IVRVPass       float64
	IVRVNearMiss   float64
	TermSlopePass  float64
	TermSlopeTier2 float64
}

// Classify applies the tier rules: tier 1 needs passing volume, IV/RV, and
// term-structure slope; tier 2 admits the near-miss slope band. Candidates
// failing volume or IV/RV below the near-miss floor are rejected outright.
func Classify(avgVolume, ivrv, slope float64, th Thresholds) Verdict {
	switch {
	case avgVolume < th.MinAvgVolume:
		return Verdict{Reason: "volume below minimum"}
	case ivrv < th.IVRVNearMiss:
		return Verdict{Reason: "IV/RV below near-miss floor"}
	case slope > th.TermSlopePass:
		return Verdict{NearMiss: true, Reason: "term-structure slope too flat"}
	case ivrv < th.IVRVPass:
		return Verdict{NearMiss: true, Reason: "IV/RV below pass threshold"}
	case slope > th.TermSlopeTier2:
		// Slope in (tier2, pass]: lower-conviction bucket.
		return Verdict{Pass: true, Tier: 2}
	default:
		return Verdict{Pass: true, Tier: 1}
	}
}

// winHistory estimates an earnings win rate from price history: for each of
// the last `quarters` quarterly intervals, a "win" is an interval whose
// largest single-day move stayed inside the expected move. A rough proxy,
// but stable and deterministic for a given bar series.
func winHistory(bars []Bar, expectedMovePct float64, quarters int) (winRate float64, sampled int) {
	const quarterBars = 63
	for q := 0; q < quarters; q++ {
		end := len(bars) - q*quarterBars
		start := end - quarterBars
		if start < 1 {
			break
		}
		sampled++
		maxMove := 0.0
		for i := start; i < end; i++ {
			if bars[i-1].Close <= 0 {
				continue
			}
			move := math.Abs(bars[i].Close-bars[i-1].Close) / bars[i-1].Close * 100
			if move > maxMove {
				maxMove = move
			}
		}
		if maxMove <= expectedMovePct {
			winRate++
		}
	}
	if sampled == 0 {
		return 0, 0
	}
	return winRate / float64(sampled) * 100, sampled
}
