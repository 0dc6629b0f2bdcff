package domain

import (
	"fmt"
	"strings"
)

// Row is one canonical row's values, positionally aligned with its
// collection's Columns.
type Row []any

// CollectionSpec describes a canonical collection: its name, the
// columns forming the natural key, and the full column list.
// KeyColumns is always a subset of Columns.
type CollectionSpec struct {
	Name       string
	KeyColumns []string
	Columns    []string
}

// Validate checks the key/column invariant.
func (s CollectionSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("collection name is empty")
	}
	if len(s.KeyColumns) == 0 {
		return fmt.Errorf("collection %s has no key columns", s.Name)
	}
	for _, k := range s.KeyColumns {
		if s.columnIndex(k) < 0 {
			return fmt.Errorf("collection %s: key column %s not in columns", s.Name, k)
		}
	}
	return nil
}

// KeyIndexes returns the positions of the key columns within Columns.
func (s CollectionSpec) KeyIndexes() []int {
	idx := make([]int, 0, len(s.KeyColumns))
	for _, k := range s.KeyColumns {
		idx = append(idx, s.columnIndex(k))
	}
	return idx
}

func (s CollectionSpec) columnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// KeyOf projects a row onto the key columns and renders it as a single
// comparable string. Two rows with equal projections are the same
// logical entity.
func (s CollectionSpec) KeyOf(row Row) string {
	parts := make([]string, 0, len(s.KeyColumns))
	for _, i := range s.KeyIndexes() {
		if i < len(row) {
			parts = append(parts, fmt.Sprintf("%v", row[i]))
		} else {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\x1f")
}

// SinkBatch is one unit of work handed to a sink: a set of rows for a
// single collection. Rows may be empty, in which case the upsert is a
// no-op.
type SinkBatch struct {
	Spec CollectionSpec
	Rows []Row
}

// DedupByKey collapses rows sharing a key projection, keeping the last
// occurrence. Sinks rely on this so a multi-row upsert never touches
// the same key twice within one statement.
func (b SinkBatch) DedupByKey() SinkBatch {
	if len(b.Rows) < 2 {
		return b
	}
	last := make(map[string]int, len(b.Rows))
	for i, row := range b.Rows {
		last[b.Spec.KeyOf(row)] = i
	}
	if len(last) == len(b.Rows) {
		return b
	}
	deduped := make([]Row, 0, len(last))
	for i, row := range b.Rows {
		if last[b.Spec.KeyOf(row)] == i {
			deduped = append(deduped, row)
		}
	}
	return SinkBatch{Spec: b.Spec, Rows: deduped}
}
