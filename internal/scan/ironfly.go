package scan

import (
	"fmt"
	"math"
	"sort"
)

// Payoff evaluates the iron-fly payoff at expiration for a given underlying
// price. Strikes are the long put, short put, short call, and long call;
// credit is the net premium received. If the strikes are supplied out of
// order they are sorted before evaluating rather than rejected.
func Payoff(price, longPut, shortPut, shortCall, longCall, credit float64) float64 {
	if !(longPut <= shortPut && shortPut <= shortCall && shortCall <= longCall) {
		strikes := []float64{longPut, shortPut, shortCall, longCall}
		sort.Float64s(strikes)
		longPut, shortPut, shortCall, longCall = strikes[0], strikes[1], strikes[2], strikes[3]
	}

	switch {
	case price <= longPut:
		// Below the long put: max loss on the put side.
		return credit - (shortPut - longPut)
	case price < shortPut:
		return credit - (shortPut - price)
	case price <= shortCall:
		// Between the short strikes: max profit plateau.
		return credit
	case price < longCall:
		return credit - (price - shortCall)
	default:
		// At or above the long call: max loss on the call side.
		return credit - (longCall - shortCall)
	}
}

// buildStrategy assembles a StrategyDetail from chain quotes: short legs at
// the ATM strike, long wings roughly one expected move out.
func buildStrategy(symbol string, price float64, chain *Chain) (*StrategyDetail, error) {
	if len(chain.Calls) == 0 || len(chain.Puts) == 0 {
		return nil, fmt.Errorf("empty chain for %s", symbol)
	}

	atmCall := nearestStrike(chain.Calls, price)
	atmPut := nearestStrike(chain.Puts, price)

	// Expected move from the ATM straddle price.
	straddle := atmCall.Mid() + atmPut.Mid()
	if straddle <= 0 {
		return nil, fmt.Errorf("no straddle premium for %s", symbol)
	}

	longPut := nearestStrike(chain.Puts, atmPut.Strike-straddle)
	longCall := nearestStrike(chain.Calls, atmCall.Strike+straddle)
	if longPut.Strike >= atmPut.Strike || longCall.Strike <= atmCall.Strike {
		return nil, fmt.Errorf("chain too narrow for %s wings", symbol)
	}

	totalCredit := atmPut.Mid() + atmCall.Mid()
	totalDebit := longPut.Mid() + longCall.Mid()
	netCredit := totalCredit - totalDebit
	if netCredit <= 0 {
		return nil, fmt.Errorf("no net credit for %s iron fly", symbol)
	}

	putWidth := atmPut.Strike - longPut.Strike
	callWidth := longCall.Strike - atmCall.Strike
	maxLoss := math.Max(putWidth, callWidth) - netCredit
	if maxLoss < 0 {
		maxLoss = 0
	}

	d := &StrategyDetail{
		Symbol:           symbol,
		Expiration:       chain.Expiration.Format("2006-01-02"),
		LongPutStrike:    longPut.Strike,
		ShortPutStrike:   atmPut.Strike,
		ShortCallStrike:  atmCall.Strike,
		LongCallStrike:   longCall.Strike,
		LongPutPremium:   round2(longPut.Mid()),
		ShortPutPremium:  round2(atmPut.Mid()),
		ShortCallPremium: round2(atmCall.Mid()),
		LongCallPremium:  round2(longCall.Mid()),
		TotalCredit:      round2(totalCredit),
		TotalDebit:       round2(totalDebit),
		NetCredit:        round2(netCredit),
		MaxProfit:        round2(netCredit),
		MaxLoss:          round2(maxLoss),
		LowerBreakeven:   round2(atmPut.Strike - netCredit),
		UpperBreakeven:   round2(atmCall.Strike + netCredit),
	}
	if d.MaxProfit > 0 {
		d.RiskReward = round2(d.MaxLoss / d.MaxProfit)
	}
	return d, nil
}

// nearestStrike returns the quote whose strike is closest to target.
// Quotes must be non-empty.
func nearestStrike(quotes []OptionQuote, target float64) OptionQuote {
	best := quotes[0]
	for _, q := range quotes[1:] {
		if math.Abs(q.Strike-target) < math.Abs(best.Strike-target) {
			best = q
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
