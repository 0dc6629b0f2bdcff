// Package carbon pulls per-ad performance rows from the second ad
// platform. The feed is ordered newest first and paged by page number;
// the client stops early once a row's date falls before the window
// start, avoiding a full-table scan on large accounts.
package carbon

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Provider = (*Connector)(nil)

const reportsPath = "/api/v1/reports"

// dateLayout is the feed's date format.
const dateLayout = "2006-01-02"

// Connector is the ad performance feed client.
type Connector struct {
	cfg    Config
	client *httpx.Client
}

// New creates an ad performance connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg, client: httpx.NewClient(0)}
}

// Source returns the source identifier.
func (c *Connector) Source() domain.SourceID {
	return domain.SourceCarbon
}

// Enabled reports whether credentials are configured.
func (c *Connector) Enabled() bool {
	return c.cfg.Enabled()
}

// reportPage is one page of the descending-time feed.
type reportPage struct {
	Records []json.RawMessage `json:"records"`
}

// Fetch pages newest-first through the feed, emitting rows inside the
// window and exiting as soon as a row predates it.
func (c *Connector) Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error) {
	recCh := make(chan domain.RawRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		for page := 1; ; page++ {
			records, err := c.fetchPage(ctx, page)
			if err != nil {
				errCh <- err
				return
			}

			for _, item := range records {
				date, err := dateOf(item)
				if err != nil {
					errCh <- err
					return
				}
				// Day granularity: the row's whole day must not end
				// before the window starts, nor begin after it ends.
				if date.Add(24*time.Hour - time.Nanosecond).Before(window.Since) {
					// Descending feed: everything after this point is
					// older than the window.
					logger.Debug("carbon: early exit at %s on page %d", date.Format(dateLayout), page)
					return
				}
				if date.After(window.Until) {
					continue // newer than the window, keep scanning
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case recCh <- domain.RawRecord{Source: domain.SourceCarbon, Payload: item}:
				}
			}

			if len(records) < c.cfg.pageSize() {
				return // short page, feed exhausted
			}
		}
	}()

	return recCh, errCh
}

func (c *Connector) fetchPage(ctx context.Context, page int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.cfg.pageSize()))
	params.Set("sort", "-date")

	var payload reportPage
	reqURL := c.cfg.baseURL() + reportsPath + "?" + params.Encode()
	if err := c.client.GetJSON(ctx, reqURL, httpx.HeaderAuth("X-Api-Key", c.cfg.APIKey), &payload); err != nil {
		return nil, httpx.ProviderError(domain.SourceCarbon, err, parseErrorBody)
	}
	return payload.Records, nil
}

// dateOf reads a feed row's date (start of day, UTC), the field the
// early-exit rule depends on.
func dateOf(item json.RawMessage) (time.Time, error) {
	var rec struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(item, &rec); err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(dateLayout, rec.Date, time.UTC)
}

// parseErrorBody extracts the documented error shape: {"error": "..."}.
func parseErrorBody(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
