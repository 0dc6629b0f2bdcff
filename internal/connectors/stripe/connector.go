// Package stripe pulls completed checkout sessions from the payments
// API. Pagination is an opaque cursor: the server returns a has_more
// flag and the client re-issues the request with starting_after set to
// the last id of the previous page until the flag clears.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Provider = (*Connector)(nil)

const sessionsPath = "/v1/checkout/sessions"

// Connector is the payments provider client.
type Connector struct {
	cfg    Config
	client *httpx.Client
}

// New creates a payments connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg, client: httpx.NewClient(0)}
}

// Source returns the source identifier.
func (c *Connector) Source() domain.SourceID {
	return domain.SourceStripe
}

// Enabled reports whether credentials are configured.
func (c *Connector) Enabled() bool {
	return c.cfg.Enabled()
}

// sessionPage is one page of the sessions list.
type sessionPage struct {
	Data    []json.RawMessage `json:"data"`
	HasMore bool              `json:"has_more"`
}

// Fetch pages through checkout sessions created within the window.
func (c *Connector) Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error) {
	recCh := make(chan domain.RawRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		startingAfter := ""
		for {
			page, err := c.fetchPage(ctx, window, startingAfter)
			if err != nil {
				errCh <- err
				return
			}

			for _, item := range page.Data {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case recCh <- domain.RawRecord{Source: domain.SourceStripe, Payload: item}:
				}
			}

			if !page.HasMore || len(page.Data) == 0 {
				return
			}
			last, err := lastID(page.Data)
			if err != nil {
				errCh <- err
				return
			}
			startingAfter = last
			logger.Debug("stripe: next page after %s", startingAfter)
		}
	}()

	return recCh, errCh
}

func (c *Connector) fetchPage(ctx context.Context, window domain.SyncWindow, startingAfter string) (*sessionPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.cfg.pageSize()))
	params.Set("created[gte]", strconv.FormatInt(window.Since.Unix(), 10))
	params.Set("created[lte]", strconv.FormatInt(window.Until.Unix(), 10))
	params.Set("status", "complete")
	if startingAfter != "" {
		params.Set("starting_after", startingAfter)
	}

	var page sessionPage
	reqURL := c.cfg.baseURL() + sessionsPath + "?" + params.Encode()
	if err := c.client.GetJSON(ctx, reqURL, httpx.BearerAuth(c.cfg.APIKey), &page); err != nil {
		return nil, httpx.ProviderError(domain.SourceStripe, err, parseErrorBody)
	}
	return &page, nil
}

// lastID extracts the id of the final record on a page, which becomes
// the next request's starting_after cursor.
func lastID(data []json.RawMessage) (string, error) {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data[len(data)-1], &rec); err != nil || rec.ID == "" {
		return "", fmt.Errorf("%w: page record without id", domain.ErrProviderUnavailable)
	}
	return rec.ID, nil
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
