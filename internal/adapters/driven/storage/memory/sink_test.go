package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

var testSpec = domain.CollectionSpec{
	Name:       "things",
	KeyColumns: []string{"id"},
	Columns:    []string{"id", "value"},
}

func TestSink_Upsert_ReplayWritesNothing(t *testing.T) {
	sink := NewSink()
	ctx := context.Background()
	batch := domain.SinkBatch{
		Spec: testSpec,
		Rows: []domain.Row{{"a", int64(1)}, {"b", int64(2)}},
	}

	written, err := sink.Upsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	written, err = sink.Upsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Len(t, sink.Rows("things"), 2)
}

func TestSink_Upsert_ChangedRowCounted(t *testing.T) {
	sink := NewSink()
	ctx := context.Background()

	_, err := sink.Upsert(ctx, domain.SinkBatch{Spec: testSpec, Rows: []domain.Row{{"a", int64(1)}}})
	require.NoError(t, err)

	written, err := sink.Upsert(ctx, domain.SinkBatch{Spec: testSpec, Rows: []domain.Row{{"a", int64(9)}}})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	row, ok := sink.Get("things", "a")
	require.True(t, ok)
	assert.Equal(t, int64(9), row[1])
}

func TestSink_Upsert_WithinBatchDuplicatesLastWins(t *testing.T) {
	sink := NewSink()

	written, err := sink.Upsert(context.Background(), domain.SinkBatch{
		Spec: testSpec,
		Rows: []domain.Row{{"a", int64(1)}, {"a", int64(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	row, _ := sink.Get("things", "a")
	assert.Equal(t, int64(2), row[1])
}

func TestSink_Upsert_EmptyBatchNoOp(t *testing.T) {
	sink := NewSink()

	written, err := sink.Upsert(context.Background(), domain.SinkBatch{Spec: testSpec})
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}
