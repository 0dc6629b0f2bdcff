package driven

import (
	"context"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// RunStore persists run history so operators can inspect past syncs.
// History is local bookkeeping: a failure to record never fails a run.
type RunStore interface {
	// Record stores one per-source record for every result in the report.
	Record(ctx context.Context, report *domain.RunReport) error

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
