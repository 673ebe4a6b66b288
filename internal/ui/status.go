package ui

import (
	"fmt"
	"time"
)

// FormatCountdown renders the time remaining until the next refresh as
// MM:SS, or "Updating..." when the next refresh is due or no data has
// arrived yet.
func FormatCountdown(lastUpdate time.Time, interval time.Duration, now time.Time) string {
	if lastUpdate.IsZero() {
		return "Updating..."
	}
	remaining := lastUpdate.Add(interval).Sub(now)
	if remaining <= 0 {
		return "Updating..."
	}
	total := int(remaining.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// StatusLine builds the one-line refresh status shown in the status box.
func StatusLine(lastUpdate time.Time, interval time.Duration, now time.Time) string {
	updated := "Never"
	if !lastUpdate.IsZero() {
		updated = lastUpdate.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Last updated: %s | Next update in: %s",
		updated, FormatCountdown(lastUpdate, interval, now))
}

// DrawStatus renders the status box with the monitor title and the
// refresh status line.
func DrawStatus(g *Grid, panel Rect, lastUpdate time.Time, interval time.Duration, now time.Time, th Theme) {
	if !panel.Visible {
		return
	}
	g.Box(panel.X, panel.Y, panel.Height, panel.Width, "earnings trades monitor", "1", th.Header)
	g.TextCentered(panel.X, panel.Y+1, panel.Width, StatusLine(lastUpdate, interval, now), th.Text)
}
