// Package postgres provides a PostgreSQL implementation of the Sink
// interface for teams that point the pipeline at a shared warehouse
// instead of the local SQLite file.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Sink writes canonical rows to a PostgreSQL database.
type Sink struct {
	db *sql.DB
}

var _ driven.Sink = (*Sink)(nil)

// NewSink opens a connection for the given DSN and verifies it.
func NewSink(ctx context.Context, dsn string) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Sink{db: db}, nil
}

// Upsert writes a batch as one multi-row INSERT ... ON CONFLICT. The
// batch is key-deduplicated first because PostgreSQL rejects a single
// statement that touches the same conflict target twice. The affected
// row count excludes conflicting rows whose stored values already
// match, so replays report zero.
func (s *Sink) Upsert(ctx context.Context, batch domain.SinkBatch) (int, error) {
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

	query, args, err := upsertSQL(batch)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting into %s: %w", batch.Spec.Name, err)
	}
	written, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting affected rows: %w", err)
	}
	return int(written), nil
}

// Close closes the database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// ensureTable creates the collection table on first use. All cells are
// stored as TEXT with deterministic rendering, so replayed batches
// compare equal and no per-collection DDL is needed.
func (s *Sink) ensureTable(ctx context.Context, spec domain.CollectionSpec) error {
	isKey := make(map[string]bool, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		isKey[k] = true
	}

	cols := make([]string, 0, len(spec.Columns)+1)
	for _, c := range spec.Columns {
		if isKey[c] {
			cols = append(cols, pq.QuoteIdentifier(c)+" TEXT NOT NULL")
		} else {
			cols = append(cols, pq.QuoteIdentifier(c)+" TEXT")
		}
	}
	keys := make([]string, 0, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys = append(keys, pq.QuoteIdentifier(k))
	}
	cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(spec.Name), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table %s: %w", spec.Name, err)
	}
	return nil
}

// upsertSQL builds one multi-row upsert for the batch. The trailing
// WHERE keeps the update from firing when every non-key value already
// matches, which is what makes the affected-row count meaningful.
func upsertSQL(batch domain.SinkBatch) (string, []any, error) {
	spec := batch.Spec
	isKey := make(map[string]bool, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		isKey[k] = true
	}

	cols := make([]string, 0, len(spec.Columns))
	var sets, changed []string
	for _, c := range spec.Columns {
		cols = append(cols, pq.QuoteIdentifier(c))
		if !isKey[c] {
			target := pq.QuoteIdentifier(spec.Name) + "." + pq.QuoteIdentifier(c)
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", pq.QuoteIdentifier(c), pq.QuoteIdentifier(c)))
			changed = append(changed, fmt.Sprintf("%s IS DISTINCT FROM excluded.%s", target, pq.QuoteIdentifier(c)))
		}
	}
	keys := make([]string, 0, len(spec.KeyColumns))
	for _, k := range spec.KeyColumns {
		keys = append(keys, pq.QuoteIdentifier(k))
	}

	args := make([]any, 0, len(batch.Rows)*len(spec.Columns))
	values := make([]string, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		if len(row) != len(spec.Columns) {
			return "", nil, fmt.Errorf("collection %s: row has %d values, want %d",
				spec.Name, len(row), len(spec.Columns))
		}
		placeholders := make([]string, 0, len(row))
		for _, v := range row {
			args = append(args, textValue(v))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
	}

	var conflict string
	if len(sets) == 0 {
		conflict = fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(keys, ", "))
	} else {
		conflict = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s WHERE %s",
			strings.Join(keys, ", "), strings.Join(sets, ", "), strings.Join(changed, " OR "))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s %s",
		pq.QuoteIdentifier(spec.Name), strings.Join(cols, ", "),
		strings.Join(values, ", "), conflict)
	return query, args, nil
}

// textValue renders a cell deterministically for TEXT storage. The same
// logical value always renders identically, which is what lets the
// change-detection WHERE clause recognise a replay.
func textValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
