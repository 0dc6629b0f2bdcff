// Package geoip resolves IP addresses to ISO country codes through a
// batch lookup API. Results enrich subscriber rows; a failed lookup
// degrades to missing countries rather than failing a sync.
package geoip

import (
	"context"
	"fmt"

	"github.com/parkerlabs/revpipe/internal/connectors/httpx"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.GeoResolver = (*Resolver)(nil)

// DefaultBaseURL is the geolocation batch endpoint.
const DefaultBaseURL = "https://ip-api.example.com"

// maxBatch is the lookup API's per-request IP limit.
const maxBatch = 100

// Resolver is the batch geolocation client.
type Resolver struct {
	baseURL string
	client  *httpx.Client
}

// New creates a resolver. An empty baseURL uses the default endpoint.
func New(baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Resolver{baseURL: baseURL, client: httpx.NewClient(0)}
}

// lookup is one result of the batch endpoint.
type lookup struct {
	Query       string `json:"query"`
	CountryCode string `json:"countryCode"`
}

// Countries resolves the given IPs in chunks of at most maxBatch.
// Unresolvable IPs are simply absent from the result.
func (r *Resolver) Countries(ctx context.Context, ips []string) (map[string]string, error) {
	countries := make(map[string]string, len(ips))
	for start := 0; start < len(ips); start += maxBatch {
		end := start + maxBatch
		if end > len(ips) {
			end = len(ips)
		}
		if err := r.resolveBatch(ctx, ips[start:end], countries); err != nil {
			return nil, err
		}
	}
	return countries, nil
}

func (r *Resolver) resolveBatch(ctx context.Context, ips []string, countries map[string]string) error {
	queries := make([]map[string]string, 0, len(ips))
	for _, ip := range ips {
		queries = append(queries, map[string]string{"query": ip, "fields": "query,countryCode"})
	}

	var results []lookup
	if err := r.client.PostJSON(ctx, r.baseURL+"/batch", nil, queries, &results); err != nil {
		return fmt.Errorf("resolving countries: %w", err)
	}

	for _, res := range results {
		if res.CountryCode != "" {
			countries[res.Query] = res.CountryCode
		}
	}
	return nil
}
