// Package config loads the YAML configuration file and applies environment
// variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the ironfly scanner and monitor.
type Config struct {
	Storage Storage       `yaml:"storage"`
	Alpaca  Alpaca        `yaml:"alpaca"`
	Scan    ScanConfig    `yaml:"scan"`
	Monitor MonitorConfig `yaml:"monitor"`
	Logging Logging       `yaml:"logging"`
}

// Storage holds paths for the metrics cache and the earnings calendar data.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// ScanConfig holds the thresholds the analyzer applies when classifying
// candidates into tiers, plus the earnings-calendar source list.
type ScanConfig struct {
	MinAvgVolume         float64  `yaml:"min_avg_volume"`         // default 1,500,000
	IVRVPass             float64  `yaml:"iv_rv_pass"`             // default 1.25
	IVRVNearMiss         float64  `yaml:"iv_rv_near_miss"`        // default 1.00
	TermSlopePass        float64  `yaml:"term_slope_pass"`        // default -0.004
	TermSlopeTier2       float64  `yaml:"term_slope_tier2"`       // default -0.006
	CalendarParquet      string   `yaml:"calendar_parquet"`       // optional parquet earnings dump
	WatchSymbols         []string `yaml:"watch_symbols"`          // static candidate list
	RateLimitPerMin      int      `yaml:"rate_limit_per_min"`     // default 180
	HistoryDays          int      `yaml:"history_days"`           // daily bars for realized vol, default 90
	VolatilityWindow     int      `yaml:"volatility_window"`      // default 30
	ExpirationCutoffDays int      `yaml:"expiration_cutoff_days"` // default 45
}

// MonitorConfig holds dashboard behaviour and palette settings.
type MonitorConfig struct {
	RefreshSeconds int     `yaml:"refresh_seconds"` // default 300
	DetailRatio    float64 `yaml:"detail_ratio"`    // fraction of height for the visualizer, default 0.45
	Palette        Palette `yaml:"palette"`
}

// Palette names the colors used by the dashboard. Values are tcell color
// names ("green", "yellow", ...); unknown names fall back to the default
// terminal color.
type Palette struct {
	Tier1  string `yaml:"tier1"`
	Tier2  string `yaml:"tier2"`
	Header string `yaml:"header"`
	Text   string `yaml:"text"`
	Error  string `yaml:"error"`
	Long   string `yaml:"long"`
	Short  string `yaml:"short"`
	Profit string `yaml:"profit"`
	Loss   string `yaml:"loss"`
	Border string `yaml:"border"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config with every threshold at its built-in value, so
// the monitor runs without a config file at all.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/metrics-cache.db",
		},
		Scan: ScanConfig{
			MinAvgVolume:         1_500_000,
			IVRVPass:             1.25,
			IVRVNearMiss:         1.00,
			TermSlopePass:        -0.004,
			TermSlopeTier2:       -0.006,
			RateLimitPerMin:      180,
			HistoryDays:          90,
			VolatilityWindow:     30,
			ExpirationCutoffDays: 45,
		},
		Monitor: MonitorConfig{
			RefreshSeconds: 300,
			DetailRatio:    0.45,
			Palette: Palette{
				Tier1:  "green",
				Tier2:  "yellow",
				Header: "aqua",
				Text:   "white",
				Error:  "red",
				Long:   "green",
				Short:  "red",
				Profit: "green",
				Loss:   "red",
				Border: "teal",
			},
		},
		Logging: Logging{
			Level: "info",
			Path:  "logs/ironfly.log",
		},
	}
}

// Load reads the YAML configuration file at the given path over the
// defaults, then applies environment variable overrides. An empty path
// returns the defaults (plus overrides).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRONFLY_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("IRONFLY_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("IRONFLY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IRONFLY_LOG_PATH"); v != "" {
		cfg.Logging.Path = v
	}
	if v := os.Getenv("IRONFLY_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Monitor.RefreshSeconds = n
		}
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
