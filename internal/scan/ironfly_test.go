package scan

import (
	"math"
	"testing"
	"time"
)

func TestPayoffWorkedScenario(t *testing.T) {
	// lp=95 sp=100 sc=105 lc=110, credit 3.
	cases := []struct {
		price float64
		want  float64
	}{
		{100, 3},    // plateau
		{102.5, 3},  // plateau interior
		{90, -2},    // below long put: 3 - 5
		{120, -2},   // above long call: 3 - 5
		{95, -2},    // at long put
		{110, -2},   // at long call
		{97.5, 0.5}, // put-side ramp
		{107.5, 0.5},
	}
	for _, c := range cases {
		got := Payoff(c.price, 95, 100, 105, 110, 3)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Payoff(%v) = %v, want %v", c.price, got, c.want)
		}
	}
}

func TestPayoffContinuityAtStrikes(t *testing.T) {
	lp, sp, sc, lc, credit := 80.0, 91.0, 97.0, 112.0, 2.4

	if got := Payoff(sp, lp, sp, sc, lc, credit); got != credit {
		t.Errorf("payoff at short put = %v, want credit %v", got, credit)
	}
	if got := Payoff(sc, lp, sp, sc, lc, credit); got != credit {
		t.Errorf("payoff at short call = %v, want credit %v", got, credit)
	}
	if got := Payoff(lp, lp, sp, sc, lc, credit); got != credit-(sp-lp) {
		t.Errorf("payoff at long put = %v, want %v", got, credit-(sp-lp))
	}
	if got := Payoff(lc, lp, sp, sc, lc, credit); got != credit-(lc-sc) {
		t.Errorf("payoff at long call = %v, want %v", got, credit-(lc-sc))
	}
}

func TestPayoffMonotonicRamps(t *testing.T) {
	lp, sp, sc, lc, credit := 95.0, 100.0, 105.0, 110.0, 3.0

	prev := Payoff(lp, lp, sp, sc, lc, credit)
	for p := lp + 0.25; p <= sp; p += 0.25 {
		cur := Payoff(p, lp, sp, sc, lc, credit)
		if cur < prev {
			t.Fatalf("put-side ramp not non-decreasing at %v: %v < %v", p, cur, prev)
		}
		prev = cur
	}

	prev = Payoff(sc, lp, sp, sc, lc, credit)
	for p := sc + 0.25; p <= lc; p += 0.25 {
		cur := Payoff(p, lp, sp, sc, lc, credit)
		if cur > prev {
			t.Fatalf("call-side ramp not non-increasing at %v: %v > %v", p, cur, prev)
		}
		prev = cur
	}
}

func TestPayoffScrambledStrikes(t *testing.T) {
	for p := 85.0; p <= 120; p += 0.5 {
		sorted := Payoff(p, 95, 100, 105, 110, 3)
		scrambled := Payoff(p, 110, 95, 105, 100, 3)
		if sorted != scrambled {
			t.Fatalf("scrambled strikes diverge at %v: %v != %v", p, sorted, scrambled)
		}
	}
}

func TestBuildStrategy(t *testing.T) {
	exp := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	mkQuotes := func() []OptionQuote {
		var qs []OptionQuote
		for strike := 90.0; strike <= 110; strike++ {
			// Time value peaks at the money.
			tv := 4.0 * math.Exp(-math.Abs(strike-100)/4)
			qs = append(qs, OptionQuote{Strike: strike, Bid: tv - 0.05, Ask: tv + 0.05, IV: 0.5})
		}
		return qs
	}
	ch := &Chain{Expiration: exp, Calls: mkQuotes(), Puts: mkQuotes()}

	d, err := buildStrategy("TEST", 100, ch)
	if err != nil {
		t.Fatalf("buildStrategy: %v", err)
	}
	if d.ShortPutStrike != 100 || d.ShortCallStrike != 100 {
		t.Errorf("short strikes = %v/%v, want ATM 100", d.ShortPutStrike, d.ShortCallStrike)
	}
	if !(d.LongPutStrike < d.ShortPutStrike && d.LongCallStrike > d.ShortCallStrike) {
		t.Errorf("wings not outside shorts: %v %v %v %v",
			d.LongPutStrike, d.ShortPutStrike, d.ShortCallStrike, d.LongCallStrike)
	}
	if d.NetCredit <= 0 {
		t.Errorf("net credit = %v, want positive", d.NetCredit)
	}
	if d.MaxProfit != d.NetCredit {
		t.Errorf("max profit = %v, want net credit %v", d.MaxProfit, d.NetCredit)
	}
	if got := d.ShortPutStrike - d.NetCredit; math.Abs(d.LowerBreakeven-got) > 0.011 {
		t.Errorf("lower breakeven = %v, want %v", d.LowerBreakeven, got)
	}
	if d.Expiration != "2026-10-16" {
		t.Errorf("expiration = %q", d.Expiration)
	}
}

func TestBuildStrategyEmptyChain(t *testing.T) {
	if _, err := buildStrategy("X", 100, &Chain{}); err == nil {
		t.Fatal("expected error for empty chain")
	}
}
