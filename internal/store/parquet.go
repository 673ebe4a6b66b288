package store

import (
	"github.com/parquet-go/parquet-go"
)

// EarningsRow is one row of an earnings-calendar Parquet dump.
type EarningsRow struct {
	Symbol     string `parquet:"symbol"`
	ReportDate string `parquet:"report_date"` // YYYY-MM-DD
	Session    string `parquet:"session"`     // "pre", "post", or ""
}

// ReadEarningsCalendar reads the full earnings-calendar dump at path.
func ReadEarningsCalendar(path string) ([]EarningsRow, error) {
	return parquet.ReadFile[EarningsRow](path)
}

// WriteEarningsCalendar writes rows to path, replacing any existing file.
// Used by tests and by external tooling that refreshes the dump.
func WriteEarningsCalendar(path string, rows []EarningsRow) error {
	return parquet.WriteFile(path, rows)
}
