// Package adsense pulls per-unit earnings reports from the first ad
// platform. Reports are requested by date window; windows longer than
// the API's maximum range are split into consecutive chunks, one
// request each.
package adsense

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Provider = (*Connector)(nil)

// maxChunkDays is the longest date range one report request may cover.
const maxChunkDays = 31

// dateLayout is the report date format.
const dateLayout = "2006-01-02"

// Connector is the earnings report client.
type Connector struct {
	cfg    Config
	client *httpx.Client
}

// New creates an earnings report connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg, client: httpx.NewClient(0)}
}

// Source returns the source identifier.
func (c *Connector) Source() domain.SourceID {
	return domain.SourceAdSense
}

// Enabled reports whether credentials are configured.
func (c *Connector) Enabled() bool {
	return c.cfg.Enabled()
}

// report is one date chunk's worth of rows.
type report struct {
	Rows []json.RawMessage `json:"rows"`
}

// Fetch requests one report per date chunk and emits all rows in
// chronological chunk order.
func (c *Connector) Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error) {
	recCh := make(chan domain.RawRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		chunks := chunkWindow(window, maxChunkDays)
		logger.Debug("adsense: %d report chunk(s) for %s", len(chunks), window)
		for _, chunk := range chunks {
			rows, err := c.fetchReport(ctx, chunk)
			if err != nil {
				errCh <- err
				return
			}
			for _, row := range rows {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case recCh <- domain.RawRecord{Source: domain.SourceAdSense, Payload: row}:
				}
			}
		}
	}()

	return recCh, errCh
}

func (c *Connector) fetchReport(ctx context.Context, chunk domain.SyncWindow) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("start_date", chunk.Since.Format(dateLayout))
	params.Set("end_date", chunk.Until.Format(dateLayout))
	params.Set("group_by", "DATE,AD_UNIT,COUNTRY")

	var payload report
	reqURL := fmt.Sprintf("%s/v2/accounts/%s/reports?%s",
		c.cfg.baseURL(), url.PathEscape(c.cfg.Account), params.Encode())
	if err := c.client.GetJSON(ctx, reqURL, httpx.BearerAuth(c.cfg.APIKey), &payload); err != nil {
		return nil, httpx.ProviderError(domain.SourceAdSense, err, parseErrorBody)
	}
	return payload.Rows, nil
}

// chunkWindow splits a window into consecutive date ranges covering at
// most maxDays report dates each, oldest first. Chunk boundaries snap
// to UTC midnight so adjacent chunks never request the same report
// date twice.
func chunkWindow(window domain.SyncWindow, maxDays int) []domain.SyncWindow {
	var chunks []domain.SyncWindow

	since := window.Since
	for {
		day := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
		next := day.AddDate(0, 0, maxDays)
		if !next.Before(window.Until) {
			chunks = append(chunks, domain.SyncWindow{Since: since, Until: window.Until})
			return chunks
		}
		chunks = append(chunks, domain.SyncWindow{Since: since, Until: next.Add(-time.Millisecond)})
		since = next
	}
}

// parseErrorBody extracts the documented error shape:
// {"error": {"message": "..."}}.
func parseErrorBody(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
