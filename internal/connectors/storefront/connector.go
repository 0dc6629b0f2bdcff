// Package storefront pulls per-app sale rows from the app storefront.
// The API has no cross-day pagination: a first request discovers which
// report dates exist in the window, then each date's rows are paged by
// a monotonically increasing row id.
package storefront

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Provider = (*Connector)(nil)

const (
	datesPath = "/v1/sales/dates"
	salesPath = "/v1/sales"
)

// dateLayout is the report date format.
const dateLayout = "2006-01-02"

// Connector is the storefront sales client.
type Connector struct {
	cfg    Config
	client *httpx.Client
}

// New creates a storefront sales connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg, client: httpx.NewClient(0)}
}

// Source returns the source identifier.
func (c *Connector) Source() domain.SourceID {
	return domain.SourceStorefront
}

// Enabled reports whether credentials are configured.
func (c *Connector) Enabled() bool {
	return c.cfg.Enabled()
}

// datesResponse lists the report dates available in a range.
type datesResponse struct {
	Dates []string `json:"dates"`
}

// salesPage is one id-ordered page of a single date's sales.
type salesPage struct {
	Sales []json.RawMessage `json:"sales"`
}

// saleID is the paging field of a sale row.
type saleID struct {
	ID int64 `json:"id"`
}

// Fetch discovers the report dates in the window, then pages each
// date's rows by ascending row id.
func (c *Connector) Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error) {
	recCh := make(chan domain.RawRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		dates, err := c.fetchDates(ctx, window)
		if err != nil {
			errCh <- err
			return
		}
		logger.Debug("storefront: %d report date(s) in %s", len(dates), window)

		for _, date := range dates {
			if err := c.fetchDate(ctx, date, recCh); err != nil {
				errCh <- err
				return
			}
		}
	}()

	return recCh, errCh
}

func (c *Connector) fetchDates(ctx context.Context, window domain.SyncWindow) ([]string, error) {
	params := url.Values{}
	params.Set("vendor", c.cfg.VendorID)
	params.Set("since", window.Since.Format(dateLayout))
	params.Set("until", window.Until.Format(dateLayout))

	var payload datesResponse
	reqURL := c.cfg.baseURL() + datesPath + "?" + params.Encode()
	if err := c.client.GetJSON(ctx, reqURL, httpx.BearerAuth(c.cfg.APIKey), &payload); err != nil {
		return nil, httpx.ProviderError(domain.SourceStorefront, err, parseErrorBody)
	}
	return payload.Dates, nil
}

// fetchDate pages one date's rows by highwater id. Paging stops on an
// empty page, a short page, or an id that fails to advance; the last
// guard keeps a misbehaving server from looping us forever.
func (c *Connector) fetchDate(ctx context.Context, date string, recCh chan<- domain.RawRecord) error {
	var afterID int64
	for {
		sales, err := c.fetchSales(ctx, date, afterID)
		if err != nil {
			return err
		}
		if len(sales) == 0 {
			return nil
		}

		for _, item := range sales {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case recCh <- domain.RawRecord{Source: domain.SourceStorefront, Payload: item}:
			}
		}

		var last saleID
		if err := json.Unmarshal(sales[len(sales)-1], &last); err != nil {
			return err
		}
		if last.ID <= afterID {
			logger.Warn("storefront: row id did not advance past %d on %s, stopping", afterID, date)
			return nil
		}
		afterID = last.ID

		if len(sales) < c.cfg.pageSize() {
			return nil
		}
	}
}

func (c *Connector) fetchSales(ctx context.Context, date string, afterID int64) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("vendor", c.cfg.VendorID)
	params.Set("date", date)
	params.Set("limit", strconv.Itoa(c.cfg.pageSize()))
	if afterID > 0 {
		params.Set("after_id", strconv.FormatInt(afterID, 10))
	}

	var payload salesPage
	reqURL := c.cfg.baseURL() + salesPath + "?" + params.Encode()
	if err := c.client.GetJSON(ctx, reqURL, httpx.BearerAuth(c.cfg.APIKey), &payload); err != nil {
		return nil, httpx.ProviderError(domain.SourceStorefront, err, parseErrorBody)
	}
	return payload.Sales, nil
}

// parseErrorBody extracts the documented error shape: {"message": "..."}.
func parseErrorBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
