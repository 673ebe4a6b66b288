package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"ironfly/internal/config"
	"ironfly/internal/monitor"
	"ironfly/internal/scan"
	"ironfly/internal/store"
	"ironfly/internal/util"
)

// fallbackWatchlist serves the simulated mode when no earnings-calendar
// source is configured.
var fallbackWatchlist = []string{"AAPL", "MSFT", "NVDA", "AMZN", "META", "GOOG", "TSLA", "AMD"}

func main() {
	refresh := flag.Int("refresh", 300, "refresh rate in seconds")
	noAllSources := flag.Bool("no-all-sources", false, "restrict to the primary earnings data source")
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
	refreshSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "refresh" {
			refreshSet = true
		}
	})
	if refreshSet {
		cfg.Monitor.RefreshSeconds = *refresh
	}

	logger := util.NewFileLogger(cfg.Logging.Path, cfg.Logging.Level)
	slog.SetDefault(logger)

	scanner := buildScanner(cfg, !*noAllSources, logger)
	interval := time.Duration(cfg.Monitor.RefreshSeconds) * time.Second
	refresher := monitor.NewRefresher(scanner, interval, logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("failed to initialize screen: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bgCtx, bgCancel := context.WithCancel(ctx)
	bgDone := make(chan struct{})
	go func() {
		refresher.Run(bgCtx)
		close(bgDone)
	}()

	logger.Info("monitor starting", "refreshSeconds", cfg.Monitor.RefreshSeconds, "allSources", !*noAllSources)
	runErr := monitor.New(screen, refresher, cfg.Monitor, logger).Run(ctx)

	// Stop the background cycle, with a bounded wait, before terminal
	// teardown.
	bgCancel()
	select {
	case <-bgDone:
	case <-time.After(2 * time.Second):
		logger.Warn("refresher did not stop in time")
	}
	screen.Fini()

	if runErr != nil {
		logger.Error("monitor failed", "error", runErr)
		os.Exit(1)
	}
	logger.Info("monitor stopped")
}

// buildScanner wires the scan pipeline from the configuration: live
// Alpaca market data when credentials are present, the deterministic
// simulator otherwise.
func buildScanner(cfg *config.Config, allSources bool, logger *slog.Logger) scan.Scanner {
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
		logger.Warn("no earnings sources configured, using built-in watchlist")
		sources = append(sources, scan.NewStaticCalendar(fallbackWatchlist))
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
