package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

// salesJSON renders a sales page with rows carrying the given ids.
func salesJSON(ids ...int64) string {
	rows := make([]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, fmt.Sprintf(`{"id":%d,"app_id":"app-1","units":2}`, id))
	}
	return `{"sales":[` + strings.Join(rows, ",") + `]}`
}

func TestConnector_Fetch_TwoPhaseWalk(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path+"?"+r.URL.RawQuery)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "vend-7", r.URL.Query().Get("vendor"))

		switch r.URL.Path {
		case "/v1/sales/dates":
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("since"))
			assert.Equal(t, "2024-01-03", r.URL.Query().Get("until"))
			fmt.Fprint(w, `{"dates":["2024-01-01","2024-01-02"]}`)
		case "/v1/sales":
			date := r.URL.Query().Get("date")
			after := r.URL.Query().Get("after_id")
			switch {
			case date == "2024-01-01" && after == "":
				fmt.Fprint(w, salesJSON(10, 11, 12))
			case date == "2024-01-01" && after == "12":
				fmt.Fprint(w, salesJSON(13))
			case date == "2024-01-02" && after == "":
				fmt.Fprint(w, salesJSON(20, 21))
			default:
				t.Errorf("unexpected sales request date=%s after=%s", date, after)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(Config{APIKey: "tok", VendorID: "vend-7", BaseURL: server.URL, PageSize: 3})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"))

	require.NoError(t, err)
	assert.Len(t, records, 6)
	// Date discovery first, then pages per date.
	require.Len(t, requests, 4)
	assert.Contains(t, requests[0], "/v1/sales/dates")
}

func TestConnector_Fetch_NoDatesNoSalesRequests(t *testing.T) {
	var salesRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sales" {
			salesRequests++
		}
		fmt.Fprint(w, `{"dates":[]}`)
	}))
	defer server.Close()

	c := New(Config{APIKey: "tok", VendorID: "vend-7", BaseURL: server.URL})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"))

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, salesRequests)
}

func TestConnector_Fetch_StuckIDStopsDate(t *testing.T) {
	var salesRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sales/dates":
			fmt.Fprint(w, `{"dates":["2024-01-01"]}`)
		case "/v1/sales":
			salesRequests++
			// Full page whose last id never advances past itself.
			fmt.Fprint(w, salesJSON(5, 5))
		}
	}))
	defer server.Close()

	c := New(Config{APIKey: "tok", VendorID: "vend-7", BaseURL: server.URL, PageSize: 2})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"))

	require.NoError(t, err)
	assert.Len(t, records, 4) // first page, then one repeat before the guard trips
	assert.Equal(t, 2, salesRequests)
}

func TestConnector_Fetch_EmptyPageEndsDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sales/dates":
			fmt.Fprint(w, `{"dates":["2024-01-01"]}`)
		case "/v1/sales":
			if r.URL.Query().Get("after_id") == "" {
				fmt.Fprint(w, salesJSON(1, 2))
			} else {
				fmt.Fprint(w, `{"sales":[]}`)
			}
		}
	}))
	defer server.Close()

	c := New(Config{APIKey: "tok", VendorID: "vend-7", BaseURL: server.URL, PageSize: 2})
	records, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"))

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestConnector_Fetch_DocumentedErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid vendor credentials"}`)
	}))
	defer server.Close()

	c := New(Config{APIKey: "bad", VendorID: "vend-7", BaseURL: server.URL})
	_, err := collect(t, c, window("2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderLogic)
	assert.Contains(t, err.Error(), "invalid vendor credentials")
}

func TestConnector_Enabled(t *testing.T) {
	assert.False(t, New(Config{}).Enabled())
	assert.False(t, New(Config{APIKey: "tok"}).Enabled())
	assert.False(t, New(Config{VendorID: "vend-7"}).Enabled())
	assert.True(t, New(Config{APIKey: "tok", VendorID: "vend-7"}).Enabled())
}
