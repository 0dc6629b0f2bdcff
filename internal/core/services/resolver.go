package services

import (
	"context"
	"fmt"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Fallback spans for cursor mode when a source has no stored cursor.
const (
	// DefaultFallbackSpan bounds user-facing cursor-mode runs.
	DefaultFallbackSpan = 30 * 24 * time.Hour

	// HourlyFallbackSpan bounds the hourly scheduled path.
	HourlyFallbackSpan = 48 * time.Hour
)

// RangeResolver turns a run request into concrete UTC windows, one per
// source. In cursor mode each source starts at its stored cursor, or
// at until-fallback when none exists. No upper bound is enforced on
// span length; very large windows just mean proportionally long
// pagination.
type RangeResolver struct {
	cursors driven.CursorStore
	now     func() time.Time
}

// NewRangeResolver creates a resolver over a cursor store. A nil nowFn
// defaults to time.Now.
func NewRangeResolver(cursors driven.CursorStore, nowFn func() time.Time) *RangeResolver {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &RangeResolver{cursors: cursors, now: nowFn}
}

// Resolve produces a window per source. An explicit window, when
// given, applies verbatim to every source. Otherwise until is a single
// now() reading shared by all sources and since is per-source.
func (r *RangeResolver) Resolve(
	ctx context.Context,
	sources []domain.SourceID,
	explicit *domain.SyncWindow,
	fallback time.Duration,
) (map[domain.SourceID]domain.SyncWindow, error) {
	windows := make(map[domain.SourceID]domain.SyncWindow, len(sources))

	if explicit != nil {
		for _, src := range sources {
			windows[src] = *explicit
		}
		return windows, nil
	}

	if fallback <= 0 {
		fallback = DefaultFallbackSpan
	}

	until := r.now().UTC()
	for _, src := range sources {
		cursor, err := r.cursors.Get(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("get cursor for %s: %w", src, err)
		}

		since := until.Add(-fallback)
		if cursor != nil {
			since = cursor.UTC()
		}
		// A cursor ahead of now (clock skew, manual override) clamps
		// to an empty window rather than erroring.
		if since.After(until) {
			since = until
		}

		window, err := domain.NewSyncWindow(since, until)
		if err != nil {
			return nil, fmt.Errorf("resolve window for %s: %w", src, err)
		}
		windows[src] = window
	}

	return windows, nil
}
