package driven

import (
	"context"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// Provider fetches raw records from one external API for a window.
// Each provider owns its own pagination strategy; the sequence it
// yields is finite, in pagination order, and not restartable.
type Provider interface {
	// Source returns the source this provider serves.
	Source() domain.SourceID

	// Enabled reports whether the provider has the credentials it
	// needs. A disabled provider is skipped, never treated as failed.
	Enabled() bool

	// Fetch pages through the provider's API for the window and emits
	// raw records on the first channel. Errors arrive on the second;
	// both channels close when fetching ends. Records within a source
	// must be consumed in order to preserve highwater-mark
	// correctness.
	Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error)
}
