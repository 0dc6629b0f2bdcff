package domain

import (
	"fmt"
	"time"
)

// SyncWindow is a concrete [Since, Until] UTC instant range for one
// synchronisation attempt. Both endpoints are inclusive. Windows are
// immutable and never persisted themselves; only Until survives as a
// cursor after a successful run.
type SyncWindow struct {
	Since time.Time
	Until time.Time
}

// NewSyncWindow builds a window, normalising both endpoints to UTC.
func NewSyncWindow(since, until time.Time) (SyncWindow, error) {
	since = since.UTC()
	until = until.UTC()
	if since.After(until) {
		return SyncWindow{}, fmt.Errorf("%w: since %s after until %s",
			ErrInvalidWindow, since.Format(time.RFC3339), until.Format(time.RFC3339))
	}
	return SyncWindow{Since: since, Until: until}, nil
}

// Yesterday returns the window covering the full previous UTC day
// relative to now: 00:00:00 to 23:59:59.999.
func Yesterday(now time.Time) SyncWindow {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	end := start.Add(24*time.Hour - time.Millisecond)
	return SyncWindow{Since: start, Until: end}
}

// Contains reports whether t falls inside the window (inclusive).
func (w SyncWindow) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Since) && !t.After(w.Until)
}

// Span returns the window length.
func (w SyncWindow) Span() time.Duration {
	return w.Until.Sub(w.Since)
}

// Days splits the window into its covered UTC dates, oldest first.
// Used by report-style providers that fetch one date at a time.
func (w SyncWindow) Days() []time.Time {
	var days []time.Time
	day := time.Date(w.Since.Year(), w.Since.Month(), w.Since.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(w.Until) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// String renders the window for logs.
func (w SyncWindow) String() string {
	return fmt.Sprintf("[%s .. %s]", w.Since.Format(time.RFC3339), w.Until.Format(time.RFC3339))
}
