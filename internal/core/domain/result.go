package domain

import "time"

// SyncState is the lifecycle of one source within a run.
type SyncState string

// Per-source run states.
const (
	StatePending   SyncState = "pending"
	StateRunning   SyncState = "running"
	StateSucceeded SyncState = "succeeded"
	StateFailed    SyncState = "failed"
	// StateSkipped means the source lacks configuration and was not
	// attempted. Not a failure: optional integrations may be absent.
	StateSkipped SyncState = "skipped"
)

// SyncResult is the outcome of one source within a run. Zero rows with
// StateSucceeded means the window genuinely held no new data, which is
// distinct from failure.
type SyncResult struct {
	Source SourceID
	State  SyncState
	Window SyncWindow
	// Rows is the number of rows the sink newly wrote or changed.
	Rows int
	// RecordErrors counts individual records that failed to normalise
	// and were skipped without failing the source.
	RecordErrors int
	// Err carries the failure message for StateFailed.
	Err string
	// Elapsed is the wall time spent on this source.
	Elapsed time.Duration
}

// OK reports whether the source completed without failing. Skipped
// sources count as OK so absent integrations do not trip monitoring.
func (r SyncResult) OK() bool {
	return r.State != StateFailed
}

// RunReport aggregates the per-source results of one invocation.
type RunReport struct {
	RunID   string
	Started time.Time
	Results map[SourceID]SyncResult
}

// Failed returns the sources that ended in StateFailed, in no
// particular order.
func (r *RunReport) Failed() []SourceID {
	var failed []SourceID
	for id, res := range r.Results {
		if res.State == StateFailed {
			failed = append(failed, id)
		}
	}
	return failed
}

// TotalRows sums written rows across all sources.
func (r *RunReport) TotalRows() int {
	total := 0
	for _, res := range r.Results {
		total += res.Rows
	}
	return total
}

// RunRecord is one persisted per-source run outcome, flattened for the
// run history store.
type RunRecord struct {
	RunID        string
	Source       SourceID
	State        SyncState
	Rows         int
	RecordErrors int
	Err          string
	Started      time.Time
	Elapsed      time.Duration
}

// Records flattens the report into one persistable record per source.
func (r *RunReport) Records() []RunRecord {
	records := make([]RunRecord, 0, len(r.Results))
	for id, res := range r.Results {
		records = append(records, RunRecord{
			RunID:        r.RunID,
			Source:       id,
			State:        res.State,
			Rows:         res.Rows,
			RecordErrors: res.RecordErrors,
			Err:          res.Err,
			Started:      r.Started,
			Elapsed:      res.Elapsed,
		})
	}
	return records
}
