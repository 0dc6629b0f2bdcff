package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceID_Known(t *testing.T) {
	for _, id := range AllSources() {
		parsed, err := ParseSourceID(string(id))
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParseSourceID_Unknown(t *testing.T) {
	_, err := ParseSourceID("mailchimp")
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = ParseSourceID("")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestAllSources_StableAndComplete(t *testing.T) {
	sources := AllSources()

	assert.Len(t, sources, 5)
	assert.Equal(t, sources, AllSources()) // stable order

	seen := make(map[SourceID]bool)
	for _, id := range sources {
		assert.False(t, seen[id], "duplicate source %s", id)
		seen[id] = true
	}
}
