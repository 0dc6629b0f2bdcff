package adsense

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

func window(since, until string) domain.SyncWindow {
	s, _ := time.Parse(time.RFC3339, since)
	u, _ := time.Parse(time.RFC3339, until)
	return domain.SyncWindow{Since: s, Until: u}
}

func collect(t *testing.T, c *Connector, w domain.SyncWindow) ([]domain.RawRecord, error) {
	t.Helper()
	recCh, errCh := c.Fetch(context.Background(), w)
	var records []domain.RawRecord
	for rec := range recCh {
		records = append(records, rec)
	}
	for err := range errCh {
		if err != nil {
			return records, err
		}
	}
	return records, nil
}

func TestChunkWindow_ShortWindowSingleChunk(t *testing.T) {
	w := window("2024-01-01T00:00:00Z", "2024-01-05T00:00:00Z")

	chunks := chunkWindow(w, 31)

	require.Len(t, chunks, 1)
	assert.Equal(t, w, chunks[0])
}

func TestChunkWindow_LongWindowSplits(t *testing.T) {
	w := window("2024-01-01T00:00:00Z", "2024-03-15T00:00:00Z")

	chunks := chunkWindow(w, 31)

	require.Len(t, chunks, 3)
	assert.Equal(t, w.Since, chunks[0].Since)
	assert.Equal(t, w.Until, chunks[2].Until)
	for i := 0; i < len(chunks)-1; i++ {
		// Consecutive, non-overlapping coverage.
		assert.True(t, chunks[i].Until.Before(chunks[i+1].Since))
		assert.Equal(t, time.Millisecond, chunks[i+1].Since.Sub(chunks[i].Until))
	}
}

func TestChunkWindow_MidDayStartKeepsDatesDisjoint(t *testing.T) {
	w := window("2024-01-01T12:30:00Z", "2024-03-15T00:00:00Z")

	chunks := chunkWindow(w, 31)

	require.Len(t, chunks, 3)
	assert.Equal(t, w.Since, chunks[0].Since)
	assert.Equal(t, w.Until, chunks[2].Until)
	for i := 0; i < len(chunks)-1; i++ {
		// A report date must never appear in two chunks.
		assert.NotEqual(t, chunks[i].Until.Format(dateLayout), chunks[i+1].Since.Format(dateLayout))
		assert.True(t, chunks[i].Until.Before(chunks[i+1].Since))
	}
}

func TestConnector_Fetch_OneRequestPerChunk(t *testing.T) {
	var ranges []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v2/accounts/pub-42/reports")
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		ranges = append(ranges, q.Get("start_date")+".."+q.Get("end_date"))
		fmt.Fprintf(w, `{"rows":[{"date":"%s","ad_unit":"header","earnings":"1.25"}]}`, q.Get("start_date"))
	}))
	defer server.Close()

	c := New(Config{Account: "pub-42", APIKey: "tok", BaseURL: server.URL})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-02-20T00:00:00Z"))

	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, ranges, 2)
	assert.Equal(t, "2024-01-01..2024-01-31", ranges[0])
	assert.Equal(t, "2024-02-01..2024-02-20", ranges[1])
}

func TestConnector_Fetch_EmptyReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rows":[]}`)
	}))
	defer server.Close()

	c := New(Config{Account: "pub-42", APIKey: "tok", BaseURL: server.URL})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestConnector_Fetch_DocumentedErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
	}))
	defer server.Close()

	c := New(Config{Account: "pub-42", APIKey: "tok", BaseURL: server.URL})
	_, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderLogic)
	assert.Contains(t, err.Error(), "The caller does not have permission")
}

func TestConnector_Enabled(t *testing.T) {
	assert.False(t, New(Config{}).Enabled())
	assert.False(t, New(Config{Account: "pub-42"}).Enabled())
	assert.False(t, New(Config{APIKey: "tok"}).Enabled())
	assert.True(t, New(Config{Account: "pub-42", APIKey: "tok"}).Enabled())
}
