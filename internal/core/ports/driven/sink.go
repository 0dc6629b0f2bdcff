package driven

import (
	"context"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// Sink is the idempotent writer fronting the durable store. After
// Upsert returns, at most one logical row exists per unique projection
// onto the batch's key columns, no matter how many times the batch (or
// overlapping batches) is replayed. Within-batch duplicate keys
// collapse to a single stored row.
type Sink interface {
	// Upsert writes the batch and returns how many rows were newly
	// written or changed. An empty batch is a no-op returning 0.
	Upsert(ctx context.Context, batch domain.SinkBatch) (int, error)

	// Close releases the backing store.
	Close() error
}
