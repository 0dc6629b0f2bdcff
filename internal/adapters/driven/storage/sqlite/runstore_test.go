package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

func TestRunStore_RecordAndRecent(t *testing.T) {
	runs := newTestStore(t).RunStore()
	ctx := context.Background()

	report := &domain.RunReport{
		RunID:   "run-1",
		Started: time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
		Results: map[domain.SourceID]domain.SyncResult{
			domain.SourceStripe: {
				Source:  domain.SourceStripe,
				State:   domain.StateSucceeded,
				Rows:    42,
				Elapsed: 3 * time.Second,
			},
			domain.SourceCarbon: {
				Source: domain.SourceCarbon,
				State:  domain.StateFailed,
				Err:    "carbon: 401",
			},
		},
	}
	require.NoError(t, runs.Record(ctx, report))

	records, err := runs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	bySource := map[domain.SourceID]domain.RunRecord{}
	for _, rec := range records {
		bySource[rec.Source] = rec
	}
	assert.Equal(t, 42, bySource[domain.SourceStripe].Rows)
	assert.Equal(t, domain.StateSucceeded, bySource[domain.SourceStripe].State)
	assert.Equal(t, "carbon: 401", bySource[domain.SourceCarbon].Err)
}

func TestRunStore_RecentNewestFirst(t *testing.T) {
	runs := newTestStore(t).RunStore()
	ctx := context.Background()

	for i, id := range []string{"run-old", "run-new"} {
		report := &domain.RunReport{
			RunID:   id,
			Started: time.Date(2024, 1, 15+i, 6, 0, 0, 0, time.UTC),
			Results: map[domain.SourceID]domain.SyncResult{
				domain.SourceStripe: {Source: domain.SourceStripe, State: domain.StateSucceeded},
			},
		}
		require.NoError(t, runs.Record(ctx, report))
	}

	records, err := runs.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-new", records[0].RunID)
}
