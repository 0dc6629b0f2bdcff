package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// sink implements driven.Sink.
type sink struct {
	store *Store
}

var _ driven.Sink = (*sink)(nil)

// Upsert writes a batch into its collection table, creating the table
// on first use. The returned count covers only rows that were newly
// inserted or whose stored values actually differ, so replaying a batch
// already landed reports zero.
func (s *sink) Upsert(ctx context.Context, batch domain.SinkBatch) (int, error) {
	if len(batch.Rows) == 0 {
		return 0, nil
	}
	if err := batch.Spec.Validate(); err != nil {
		return 0, fmt.Errorf("validating collection: %w", err)
	}
	batch = batch.DedupByKey()

	if err := s.ensureTable(ctx, batch.Spec); err != nil {
		return 0, err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertSQL(batch.Spec))
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for _, row := range batch.Rows {
		if len(row) != len(batch.Spec.Columns) {
			return 0, fmt.Errorf("collection %s: row has %d values, want %d",
				batch.Spec.Name, len(row), len(batch.Spec.Columns))
		}
		res, err := stmt.ExecContext(ctx, []any(row)...)
		if err != nil {
			return 0, fmt.Errorf("upserting into %s: %w", batch.Spec.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting affected rows: %w", err)
		}
		written += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return int(written), nil
}

// Close is a no-op; the owning Store holds the connection.
func (s *sink) Close() error {
	return nil
}

// ensureTable creates the collection table on first use. Key columns
// form the primary key; SQLite's dynamic typing stores the remaining
// values as-is.
func (s *sink) ensureTable(ctx context.Context, spec domain.CollectionSpec) error {
	cols := make([]string, 0, len(spec.Columns)+1)
	for _, c := range spec.Columns {
		cols = append(cols, quoteIdent(c))
	}
	keys := make([]string, 0, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys = append(keys, quoteIdent(k))
	}
	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(spec.Name), strings.Join(cols, ", "))
	if _, err := s.store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", spec.Name, err)
	}
	return nil
}

// upsertSQL builds the idempotent single-row upsert for a collection.
// The trailing WHERE keeps the update (and its affected-row count) from
// firing when nothing actually changed.
func upsertSQL(spec domain.CollectionSpec) string {
	isKey := make(map[string]bool, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		isKey[k] = true
	}

	cols := make([]string, 0, len(spec.Columns))
	placeholders := make([]string, 0, len(spec.Columns))
	var sets, changed []string
	for _, c := range spec.Columns {
		cols = append(cols, quoteIdent(c))
		placeholders = append(placeholders, "?")
		if !isKey[c] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(c), quoteIdent(c)))
			changed = append(changed, fmt.Sprintf("%s IS NOT excluded.%s", quoteIdent(c), quoteIdent(c)))
		}
	}
	keys := make([]string, 0, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys = append(keys, quoteIdent(k))
	}

	if len(sets) == 0 {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
			quoteIdent(spec.Name), strings.Join(cols, ", "),
			strings.Join(placeholders, ", "), strings.Join(keys, ", "))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s WHERE %s",
		quoteIdent(spec.Name), strings.Join(cols, ", "),
		strings.Join(placeholders, ", "), strings.Join(keys, ", "),
		strings.Join(sets, ", "), strings.Join(changed, " OR "))
}
