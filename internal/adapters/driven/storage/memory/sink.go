// Package memory provides in-memory implementations of the driven
// storage ports. They carry the same idempotency semantics as the
// durable backends and exist for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Sink is an in-memory Sink implementation.
type Sink struct {
	mu sync.RWMutex
	// rows maps collection name -> key projection -> stored row.
	rows map[string]map[string]domain.Row
}

var _ driven.Sink = (*Sink)(nil)

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{rows: make(map[string]map[string]domain.Row)}
}

// Upsert stores the batch, counting only rows that are new or differ
// from what is already held.
func (s *Sink) Upsert(_ context.Context, batch domain.SinkBatch) (int, error) {
	if len(batch.Rows) == 0 {
		return 0, nil
	}
	if err := batch.Spec.Validate(); err != nil {
		return 0, fmt.Errorf("validating collection: %w", err)
	}
	batch = batch.DedupByKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.rows[batch.Spec.Name]
	if table == nil {
		table = make(map[string]domain.Row)
		s.rows[batch.Spec.Name] = table
	}

	written := 0
	for _, row := range batch.Rows {
		if len(row) != len(batch.Spec.Columns) {
			return 0, fmt.Errorf("collection %s: row has %d values, want %d",
				batch.Spec.Name, len(row), len(batch.Spec.Columns))
		}
		key := batch.Spec.KeyOf(row)
		if existing, ok := table[key]; ok && fingerprint(existing) == fingerprint(row) {
			continue
		}
		table[key] = row
		written++
	}
	return written, nil
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

// Rows returns the stored rows for a collection, for assertions.
func (s *Sink) Rows(collection string) []domain.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.Row, 0, len(s.rows[collection]))
	for _, row := range s.rows[collection] {
		rows = append(rows, row)
	}
	return rows
}

// Get returns the stored row for a key projection, for assertions.
func (s *Sink) Get(collection, key string) (domain.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[collection][key]
	return row, ok
}

// fingerprint renders a row for equality checks.
func fingerprint(row domain.Row) string {
	return fmt.Sprintf("%#v", row)
}
