package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ironfly/internal/config"
	"ironfly/internal/scan"
	"ironfly/internal/store"
	"ironfly/internal/util"
)

func main() {
	list := flag.Bool("list", false, "compact output with only ticker symbols and tiers")
	ironFly := flag.Bool("iron-fly", false, "calculate and display recommended iron fly strikes")
	analyze := flag.String("analyze", "", "analyze one ticker and display all metrics regardless of pass/fail")
	allSources := flag.Bool("all-sources", false, "combine every configured earnings data source")
	configPath := flag.String("config", "", "path to the YAML config (default: $IRONFLY_CONFIG)")
	flag.Parse()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("IRONFLY_CONFIG")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewFileLogger(cfg.Logging.Path, cfg.Logging.Level)
	slog.SetDefault(logger)

	scanner := buildScanner(cfg, *allSources, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *analyze != "" {
		analyzeTicker(ctx, scanner, strings.ToUpper(strings.TrimSpace(*analyze)), *ironFly)
		return
	}

	res, err := scanner.Scan(ctx)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}
	printScan(ctx, scanner, res, *list, *ironFly)
}

func buildScanner(cfg *config.Config, allSources bool, logger *slog.Logger) *scan.EarningsScanner {
	var md scan.MarketData
	if cfg.Alpaca.APIKey != "" && cfg.Alpaca.APISecret != "" {
		md = scan.NewAlpacaMarketData(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
			cfg.Scan.RateLimitPerMin, logger)
	} else {
		logger.Warn("no Alpaca credentials, using simulated market data")
		md = scan.NewSimMarketData()
	}
	chains := scan.NewSyntheticChainSource(md)

	var sources []scan.CalendarSource
	if cfg.Scan.CalendarParquet != "" {
		sources = append(sources, scan.NewParquetCalendar(cfg.Scan.CalendarParquet, logger))
	}
	if len(cfg.Scan.WatchSymbols) > 0 {
		sources = append(sources, scan.NewStaticCalendar(cfg.Scan.WatchSymbols))
	}
	if len(sources) == 0 {
		log.Fatalf("no earnings sources configured: set scan.calendar_parquet or scan.watch_symbols")
	}

	var cache *store.MetricsCache
	if cfg.Storage.SQLitePath != "" {
		c, err := store.OpenMetricsCache(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Warn("metrics cache unavailable", "error", err)
		} else {
			cache = c
		}
	}

	return scan.NewEarningsScanner(md, chains, sources, allSources, cache, cfg.Scan, logger)
}

func analyzeTicker(ctx context.Context, scanner *scan.EarningsScanner, symbol string, ironFly bool) {
	fmt.Printf("\n=== ANALYZING %s ===\n\n", symbol)

	m, v, err := scanner.AnalyzeTicker(ctx, symbol)
	if err != nil {
		fmt.Printf("Error analyzing %s: %v\n", symbol, err)
		os.Exit(1)
	}

	status := "FAIL"
	switch {
	case v.Pass:
		status = fmt.Sprintf("PASS (Tier %d)", v.Tier)
	case v.NearMiss:
		status = "NEAR MISS"
	}
	fmt.Printf("Status: %s\n", status)
	if v.Reason != "" {
		fmt.Printf("Reason: %s\n", v.Reason)
	}

	fmt.Println("\nCORE METRICS:")
	fmt.Printf("  Price: $%.2f\n", m.Price)
	fmt.Printf("  Volume: %.0f\n", m.Volume)
	fmt.Printf("  Term Structure: %.4f\n", m.TermStructure)
	fmt.Printf("  IV/RV Ratio: %.2f\n", m.IVRVRatio)
	fmt.Printf("  Winrate: %.1f%% over the last %d earnings\n", m.WinRate, m.WinQuarters)
	if m.FloatRatio != nil {
		fmt.Printf("  Float Ratio: %.4f\n", *m.FloatRatio)
	}
	if m.ExpectedMovePct != nil {
		fmt.Printf("  Expected Move: %.1f%%\n", *m.ExpectedMovePct)
	}

	if ironFly {
		printIronFly(ctx, scanner, symbol, "  ")
	}
}

func printScan(ctx context.Context, scanner *scan.EarningsScanner, res *scan.Result, list, ironFly bool) {
	var tier1, tier2 []string
	for _, sym := range res.Recommended {
		if res.Metrics[sym].Tier == 2 {
			tier2 = append(tier2, sym)
		} else {
			tier1 = append(tier1, sym)
		}
	}

	fmt.Println("\n=== SCAN RESULTS ===")

	if list {
		fmt.Printf("\nTIER 1: %s\n", joinOrNone(tier1))
		fmt.Printf("TIER 2: %s\n", joinOrNone(tier2))
		misses := make([]string, len(res.NearMisses))
		for i, nm := range res.NearMisses {
			misses[i] = nm.Symbol
		}
		fmt.Printf("NEAR MISSES: %s\n", joinOrNone(misses))
	} else {
		printTier(res, "TIER 1 RECOMMENDED TRADES", tier1)
		printTier(res, "TIER 2 RECOMMENDED TRADES", tier2)
		if len(res.NearMisses) > 0 {
			fmt.Println("\nNEAR MISSES:")
			for _, nm := range res.NearMisses {
				fmt.Printf("  %s: %s\n", nm.Symbol, nm.Reason)
			}
		}
	}

	if ironFly {
		fmt.Println("\nIRON FLY RECOMMENDATIONS:")
		for tier, syms := range [][]string{tier1, tier2} {
			if len(syms) == 0 {
				continue
			}
			fmt.Printf("\n  TIER %d TRADES:\n", tier+1)
			for _, sym := range syms {
				fmt.Println()
				printIronFly(ctx, scanner, sym, "    ")
			}
		}
	}
}

func printTier(res *scan.Result, title string, syms []string) {
	fmt.Printf("\n%s:\n", title)
	if len(syms) == 0 {
		fmt.Println("  None")
		return
	}
	for _, sym := range syms {
		m := res.Metrics[sym]
		fmt.Printf("  %s: $%.2f | vol %.0f | IV/RV %.2f | term %.4f | winrate %.1f%% over %d earnings\n",
			sym, m.Price, m.Volume, m.IVRVRatio, m.TermStructure, m.WinRate, m.WinQuarters)
	}
}

func printIronFly(ctx context.Context, scanner *scan.EarningsScanner, symbol, indent string) {
	d, err := scanner.StrategyDetail(ctx, symbol)
	if err != nil {
		fmt.Printf("%s%s: %v\n", indent, symbol, err)
		return
	}
	fmt.Printf("%s%s (%s):\n", indent, symbol, d.Expiration)
	fmt.Printf("%s  Short $%.2fP/$%.2fC for $%.2f credit, Long $%.2fP/$%.2fC for $%.2f debit\n",
		indent, d.ShortPutStrike, d.ShortCallStrike, d.TotalCredit,
		d.LongPutStrike, d.LongCallStrike, d.TotalDebit)
	fmt.Printf("%s  Break-evens: $%.2f-$%.2f, Risk/Reward: 1:%.2f\n",
		indent, d.LowerBreakeven, d.UpperBreakeven, d.RiskReward)
}

func joinOrNone(syms []string) string {
	if len(syms) == 0 {
		return "None"
	}
	return strings.Join(syms, ", ")
}
