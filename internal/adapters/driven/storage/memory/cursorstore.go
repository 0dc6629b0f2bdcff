package memory

import (
	"context"
	"sync"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// CursorStore is an in-memory CursorStore implementation.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[domain.SourceID]time.Time
}

var _ driven.CursorStore = (*CursorStore)(nil)

// NewCursorStore creates an empty in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: make(map[domain.SourceID]time.Time)}
}

// Get returns the stored cursor, or nil when none exists.
func (s *CursorStore) Get(_ context.Context, source domain.SourceID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since, ok := s.cursors[source]
	if !ok {
		return nil, nil
	}
	return &since, nil
}

// Set stores or replaces the cursor for a source.
func (s *CursorStore) Set(_ context.Context, source domain.SourceID, since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[source] = since.UTC()
	return nil
}

// All returns every stored cursor in source enumeration order.
func (s *CursorStore) All(_ context.Context) ([]domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []domain.Cursor
	for _, id := range domain.AllSources() {
		if since, ok := s.cursors[id]; ok {
			all = append(all, domain.Cursor{Source: id, Since: since})
		}
	}
	return all, nil
}

// Delete removes the cursor for a source.
func (s *CursorStore) Delete(_ context.Context, source domain.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cursors, source)
	return nil
}
