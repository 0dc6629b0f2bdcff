package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// The statement builder is tested directly; exercising a live server is
// left to integration environments.

func TestUpsertSQL_SingleRow(t *testing.T) {
	batch := domain.SinkBatch{
		Spec: domain.CollectionSpec{
			Name:       "t",
			KeyColumns: []string{"k"},
			Columns:    []string{"k", "v"},
		},
		Rows: []domain.Row{{"a", int64(1)}},
	}

	query, args, err := upsertSQL(batch)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "t" ("k", "v") VALUES ($1, $2) `+
			`ON CONFLICT ("k") DO UPDATE SET "v" = excluded."v" `+
			`WHERE "t"."v" IS DISTINCT FROM excluded."v"`,
		query)
	assert.Equal(t, []any{"a", "1"}, args)
}

func TestUpsertSQL_MultiRowPlaceholders(t *testing.T) {
	batch := domain.SinkBatch{
		Spec: domain.CollectionSpec{
			Name:       "t",
			KeyColumns: []string{"k"},
			Columns:    []string{"k", "v"},
		},
		Rows: []domain.Row{{"a", int64(1)}, {"b", int64(2)}, {"c", nil}},
	}

	query, args, err := upsertSQL(batch)
	require.NoError(t, err)
	assert.Contains(t, query, "VALUES ($1, $2), ($3, $4), ($5, $6)")
	assert.Equal(t, []any{"a", "1", "b", "2", "c", nil}, args)
}

func TestUpsertSQL_CompositeKey(t *testing.T) {
	batch := domain.SinkBatch{
		Spec: domain.AdEarningsCollection,
		Rows: []domain.Row{{"2024-01-15", "pub-42", "header", "US", int64(1), int64(1), int64(1), 1.5, nil, "{}"}},
	}

	query, _, err := upsertSQL(batch)
	require.NoError(t, err)
	assert.Contains(t, query, `ON CONFLICT ("date", "account", "ad_unit", "country")`)
	assert.NotContains(t, query, `SET "date"`) // key columns never updated
}

func TestUpsertSQL_MismatchedRowRejected(t *testing.T) {
	batch := domain.SinkBatch{
		Spec: domain.CollectionSpec{
			Name:       "t",
			KeyColumns: []string{"k"},
			Columns:    []string{"k", "v"},
		},
		Rows: []domain.Row{{"only-key"}},
	}

	_, _, err := upsertSQL(batch)
	assert.Error(t, err)
}

func TestTextValue_Deterministic(t *testing.T) {
	assert.Nil(t, textValue(nil))
	assert.Equal(t, "x", textValue("x"))
	assert.Equal(t, "42", textValue(int64(42)))
	assert.Equal(t, "1.25", textValue(1.25))
	assert.Equal(t, "true", textValue(true))
}
