// Package buttondown pulls subscribers from the email platform. The
// server embeds the literal next-page URL in each response; the client
// follows it until absent, bounded by httpx.MaxLinkedPages so a
// misbehaving server cannot loop a sync forever.
package buttondown

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
	"github.com/parkerlabs/revpipe/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Provider = (*Connector)(nil)

const subscribersPath = "/v1/subscribers"

// Connector is the email platform client.
type Connector struct {
	cfg    Config
	client *httpx.Client
	geo    driven.GeoResolver
}

// New creates an email platform connector. The geo resolver is
// optional; without one, subscribers carry no country.
func New(cfg Config, geo driven.GeoResolver) *Connector {
	return &Connector{cfg: cfg, client: httpx.NewClient(0), geo: geo}
}

// Source returns the source identifier.
func (c *Connector) Source() domain.SourceID {
	return domain.SourceButtondown
}

// Enabled reports whether credentials are configured.
func (c *Connector) Enabled() bool {
	return c.cfg.Enabled()
}

// subscriberPage is one page of the subscriber list.
type subscriberPage struct {
	Results []json.RawMessage `json:"results"`
	Next    string            `json:"next"`
}

// Fetch follows next-page links through subscribers changed within the
// window, enriching each page with best-effort IP countries.
func (c *Connector) Fetch(ctx context.Context, window domain.SyncWindow) (<-chan domain.RawRecord, <-chan error) {
	recCh := make(chan domain.RawRecord)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)

		pageURL := c.firstPageURL(window)
		for pages := 0; pageURL != ""; pages++ {
			if pages >= httpx.MaxLinkedPages {
				// Bounded, not fatal: land what we have and let the
				// next run continue from the advanced cursor.
				logger.Warn("buttondown: stopping after %d linked pages, next link still present", pages)
				return
			}

			var page subscriberPage
			if err := c.client.GetJSON(ctx, pageURL, httpx.TokenAuth(c.cfg.APIKey), &page); err != nil {
				errCh <- httpx.ProviderError(domain.SourceButtondown, err, parseErrorBody)
				return
			}

			for _, item := range c.enrich(ctx, page.Results) {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case recCh <- domain.RawRecord{Source: domain.SourceButtondown, Payload: item}:
				}
			}

			pageURL = page.Next
		}
	}()

	return recCh, errCh
}

func (c *Connector) firstPageURL(window domain.SyncWindow) string {
	params := url.Values{}
	params.Set("subscribed_after", window.Since.Format(time.RFC3339))
	params.Set("subscribed_before", window.Until.Format(time.RFC3339))
	return c.cfg.baseURL() + subscribersPath + "?" + params.Encode()
}

// enrich resolves subscriber IPs to countries for one page and injects
// the result into each payload. Enrichment is best-effort: on any
// failure the original payloads pass through with no country.
func (c *Connector) enrich(ctx context.Context, items []json.RawMessage) []json.RawMessage {
	if c.geo == nil || len(items) == 0 {
		return items
	}

	ips := make([]string, 0, len(items))
	for _, item := range items {
		if ip := ipOf(item); ip != "" {
			ips = append(ips, ip)
		}
	}
	if len(ips) == 0 {
		return items
	}

	countries, err := c.geo.Countries(ctx, ips)
	if err != nil {
		logger.Debug("buttondown: country enrichment failed: %v", err)
		return items
	}

	enriched := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		country, ok := countries[ipOf(item)]
		if !ok {
			enriched = append(enriched, item)
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			enriched = append(enriched, item)
			continue
		}
		fields["country"] = country
		merged, err := json.Marshal(fields)
		if err != nil {
			enriched = append(enriched, item)
			continue
		}
		enriched = append(enriched, merged)
	}
	return enriched
}

func ipOf(item json.RawMessage) string {
	var rec struct {
		IPAddress string `json:"ip_address"`
	}
	if err := json.Unmarshal(item, &rec); err != nil {
		return ""
	}
	return rec.IPAddress
}

// parseErrorBody extracts the documented error shape: {"detail": "..."}.
func parseErrorBody(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
