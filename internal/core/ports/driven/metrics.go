package driven

import "github.com/parkerlabs/revpipe/internal/core/domain"

// MetricsRecorder receives per-source outcomes for observability.
// Optional: the orchestrator tolerates a nil recorder.
type MetricsRecorder interface {
	ObserveSync(result domain.SyncResult)
}
