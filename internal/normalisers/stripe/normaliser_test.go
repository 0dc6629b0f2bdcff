package stripe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

func record(payload string) domain.RawRecord {
	return domain.RawRecord{Source: domain.SourceStripe, Payload: json.RawMessage(payload)}
}

func TestNormalise_FullSession(t *testing.T) {
	n := New()
	row, err := n.Normalise(record(`{
		"id": "cs_123",
		"created": 1704067200,
		"amount_total": 4900,
		"currency": "USD",
		"status": "complete",
		"customer_details": {"email": "Alice@Example.com", "address": {"country": "DE"}}
	}`))

	require.NoError(t, err)
	require.Len(t, row, len(domain.PaymentsCollection.Columns))
	assert.Equal(t, "cs_123", row[0])
	assert.Equal(t, "2024-01-01T00:00:00Z", row[1])
	assert.Equal(t, int64(4900), row[2])
	assert.Equal(t, "usd", row[3])
	assert.Equal(t, "complete", row[4])

	// Hash of the lower-cased address, never the raw address.
	sum := sha256.Sum256([]byte("alice@example.com"))
	assert.Equal(t, hex.EncodeToString(sum[:]), row[5])
	assert.NotContains(t, row[5], "@")
	assert.Equal(t, "DE", row[6])
}

func TestNormalise_HashIsCaseInsensitive(t *testing.T) {
	n := New()
	a, err := n.Normalise(record(`{"id":"cs_1","customer_details":{"email":"bob@example.com"}}`))
	require.NoError(t, err)
	b, err := n.Normalise(record(`{"id":"cs_1","customer_details":{"email":"BOB@EXAMPLE.COM"}}`))
	require.NoError(t, err)

	assert.Equal(t, a[5], b[5])
}

func TestNormalise_MissingOptionalFields(t *testing.T) {
	n := New()
	row, err := n.Normalise(record(`{"id":"cs_2","created":1704067200,"status":"complete"}`))

	require.NoError(t, err)
	assert.Equal(t, int64(0), row[2]) // missing amount defaults to zero
	assert.Nil(t, row[5])             // no email, no hash
	assert.Nil(t, row[6])             // no country
}

func TestNormalise_MissingIDRejected(t *testing.T) {
	n := New()
	_, err := n.Normalise(record(`{"created":1704067200}`))

	assert.Error(t, err)
}

func TestNormalise_MalformedPayloadRejected(t *testing.T) {
	n := New()
	_, err := n.Normalise(record(`{not json`))

	assert.Error(t, err)
}
