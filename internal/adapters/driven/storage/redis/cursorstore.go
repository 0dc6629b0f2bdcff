// Package redis provides a Redis-backed CursorStore for deployments
// where several pipeline hosts share cursor state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// keyPrefix namespaces cursor keys in a shared Redis instance.
const keyPrefix = "revpipe:cursor:"

// cursorLayout preserves sub-second precision across round trips.
const cursorLayout = time.RFC3339Nano

// CursorStore is a Redis-backed CursorStore implementation. Each cursor
// lives under its own key, so per-source writes are atomic.
type CursorStore struct {
	client *redis.Client
}

var _ driven.CursorStore = (*CursorStore)(nil)

// NewCursorStore connects to Redis and verifies the connection.
func NewCursorStore(ctx context.Context, addr, password string, db int) (*CursorStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &CursorStore{client: client}, nil
}

// Close releases the client connection pool.
func (s *CursorStore) Close() error {
	return s.client.Close()
}

// Get returns the stored cursor, or nil when none exists.
func (s *CursorStore) Get(ctx context.Context, source domain.SourceID) (*time.Time, error) {
	raw, err := s.client.Get(ctx, keyFor(source)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cursor: %w", err)
	}

	since, err := time.Parse(cursorLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing cursor for %s: %w", source, err)
	}
	since = since.UTC()
	return &since, nil
}

// Set stores or replaces the cursor for a source.
func (s *CursorStore) Set(ctx context.Context, source domain.SourceID, since time.Time) error {
	if err := s.client.Set(ctx, keyFor(source), since.UTC().Format(cursorLayout), 0).Err(); err != nil {
		return fmt.Errorf("saving cursor: %w", err)
	}
	return nil
}

// All returns every stored cursor. Sources are enumerable, so a bulk
// read over the known keys avoids a SCAN.
func (s *CursorStore) All(ctx context.Context) ([]domain.Cursor, error) {
	sources := domain.AllSources()
	keys := make([]string, 0, len(sources))
	for _, source := range sources {
		keys = append(keys, keyFor(source))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cursors: %w", err)
	}

	var cursors []domain.Cursor
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // absent key
		}
		since, err := time.Parse(cursorLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing cursor for %s: %w", sources[i], err)
		}
		cursors = append(cursors, domain.Cursor{Source: sources[i], Since: since.UTC()})
	}
	return cursors, nil
}

// Delete removes the cursor for a source.
func (s *CursorStore) Delete(ctx context.Context, source domain.SourceID) error {
	if err := s.client.Del(ctx, keyFor(source)).Err(); err != nil {
		return fmt.Errorf("deleting cursor: %w", err)
	}
	return nil
}

func keyFor(source domain.SourceID) string {
	return keyPrefix + string(source)
}
