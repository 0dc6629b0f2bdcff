package driving

import (
	"context"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// RunOptions selects which sources to synchronise and how to resolve
// their windows.
type RunOptions struct {
	// Sources to run. Empty means all registered sources.
	Sources []domain.SourceID

	// Window, when set, is used verbatim for every source. When nil,
	// each source gets a cursor-derived window.
	Window *domain.SyncWindow

	// FallbackSpan bounds the window for sources without a stored
	// cursor in cursor mode. Zero selects the 30-day default.
	FallbackSpan time.Duration

	// AdvanceCursors persists window.Until as the new cursor for each
	// source that succeeds.
	AdvanceCursors bool
}

// SyncService runs a set of sources against resolved windows, isolating
// per-source failure. Callers always receive a per-source result map;
// Run only errors on invocation problems (unknown source, cursor
// resolution failure), never on individual source failures.
type SyncService interface {
	Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error)
}
