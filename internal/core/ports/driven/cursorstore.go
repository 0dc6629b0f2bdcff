package driven

import (
	"context"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// CursorStore persists the last successfully synchronised instant per
// source. Writes are keyed per source and must be atomic per key so
// concurrently running sources never interleave partial state.
type CursorStore interface {
	// Get returns the stored cursor, or nil when none exists.
	Get(ctx context.Context, source domain.SourceID) (*time.Time, error)

	// Set stores or replaces the cursor for a source.
	Set(ctx context.Context, source domain.SourceID, since time.Time) error

	// All returns every stored cursor in stable source order.
	All(ctx context.Context) ([]domain.Cursor, error)

	// Delete removes the cursor for a source. Absent cursors are not
	// an error.
	Delete(ctx context.Context, source domain.SourceID) error
}
