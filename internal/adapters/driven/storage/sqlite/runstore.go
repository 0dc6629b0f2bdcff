package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Record stores one row per source result in the report.
func (s *runStore) Record(ctx context.Context, report *domain.RunReport) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sync_runs (run_id, source, state, rows_written, record_errors, error, started_at, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, source) DO UPDATE SET
			state = excluded.state,
			rows_written = excluded.rows_written,
			record_errors = excluded.record_errors,
			error = excluded.error,
			elapsed_ms = excluded.elapsed_ms
	`)
	if err != nil {
		return fmt.Errorf("preparing run insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range report.Records() {
		if _, err := stmt.ExecContext(ctx, rec.RunID, string(rec.Source), string(rec.State),
			rec.Rows, rec.RecordErrors, nullString(rec.Err),
			rec.Started.UTC(), rec.Elapsed.Milliseconds()); err != nil {
			return fmt.Errorf("saving run record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Recent returns the most recent run records, newest first.
func (s *runStore) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, source, state, rows_written, record_errors, error, started_at, elapsed_ms
		FROM sync_runs
		ORDER BY started_at DESC, source
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run records: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.RunRecord
		var source, state string
		var errMsg sql.NullString
		var started time.Time
		var elapsedMS int64
		if err := rows.Scan(&rec.RunID, &source, &state, &rec.Rows,
			&rec.RecordErrors, &errMsg, &started, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		rec.Source = domain.SourceID(source)
		rec.State = domain.SyncState(state)
		rec.Err = errMsg.String
		rec.Started = started.UTC()
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run records: %w", err)
	}
	return records, nil
}

// nullString maps an empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
