package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// cursorStore implements driven.CursorStore.
type cursorStore struct {
	store *Store
}

var _ driven.CursorStore = (*cursorStore)(nil)

// cursorLayout preserves sub-second precision across round trips.
const cursorLayout = time.RFC3339Nano

// Get returns the stored cursor for a source, or nil when none exists.
func (s *cursorStore) Get(ctx context.Context, source domain.SourceID) (*time.Time, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT since FROM cursors WHERE source = ?", string(source))

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning cursor: %w", err)
	}

	since, err := time.Parse(cursorLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing cursor for %s: %w", source, err)
	}
	since = since.UTC()
	return &since, nil
}

// Set stores or replaces the cursor for a source.
func (s *cursorStore) Set(ctx context.Context, source domain.SourceID, since time.Time) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cursors (source, since, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source) DO UPDATE SET
			since = excluded.since,
			updated_at = CURRENT_TIMESTAMP
	`, string(source), since.UTC().Format(cursorLayout))

	if err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// All returns every stored cursor, ordered by source.
func (s *cursorStore) All(ctx context.Context) ([]domain.Cursor, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT source, since FROM cursors ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("querying cursors: %w", err)
	}
	defer rows.Close()

	var cursors []domain.Cursor
	for rows.Next() {
		var source, raw string
		if err := rows.Scan(&source, &raw); err != nil {
			return nil, fmt.Errorf("scanning cursor: %w", err)
		}
		since, err := time.Parse(cursorLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing cursor for %s: %w", source, err)
		}
		cursors = append(cursors, domain.Cursor{
			Source: domain.SourceID(source),
			Since:  since.UTC(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cursors: %w", err)
	}
	return cursors, nil
}

// Delete removes the cursor for a source.
func (s *cursorStore) Delete(ctx context.Context, source domain.SourceID) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cursors WHERE source = ?", string(source))
	if err != nil {
		return fmt.Errorf("deleting cursor: %w", err)
	}
	return nil
}
