// Package store provides the on-disk data layer: a SQLite cache for
// computed scan metrics and a Parquet reader for earnings-calendar dumps.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// MetricsCache caches serialized per-symbol scan metrics keyed by scan day,
// so repeated scans within a session skip refetching market data. Payloads
// are opaque bytes; the scan layer owns the encoding.
type MetricsCache struct {
	db *sql.DB
}

// OpenMetricsCache opens (or creates) the cache database at dbPath.
func OpenMetricsCache(dbPath string) (*MetricsCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	const schema = `
CREATE TABLE IF NOT EXISTS metrics_cache (
	scan_day TEXT NOT NULL,
	symbol   TEXT NOT NULL,
	payload  BLOB NOT NULL,
	PRIMARY KEY (scan_day, symbol)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating metrics_cache table: %w", err)
	}
	return &MetricsCache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *MetricsCache) Close() error {
	return c.db.Close()
}

// Get returns the cached payload for (day, symbol), or ok=false on a miss.
func (c *MetricsCache) Get(day, symbol string) (payload []byte, ok bool, err error) {
	row := c.db.QueryRow(
		`SELECT payload FROM metrics_cache WHERE scan_day = ? AND symbol = ?`,
		day, strings.ToUpper(symbol),
	)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Put stores or replaces the payload for (day, symbol).
func (c *MetricsCache) Put(day, symbol string, payload []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO metrics_cache (scan_day, symbol, payload) VALUES (?, ?, ?)`,
		day, strings.ToUpper(symbol), payload,
	)
	return err
}

// Prune deletes entries older than the given scan day, keeping the cache
// from growing across sessions.
func (c *MetricsCache) Prune(beforeDay string) error {
	_, err := c.db.Exec(`DELETE FROM metrics_cache WHERE scan_day < ?`, beforeDay)
	return err
}
