package driven

import "context"

// GeoResolver resolves IP addresses to ISO country codes in batches.
// Lookups are best-effort enrichment: a failed or partial resolution
// degrades to missing countries and must never abort ingestion.
type GeoResolver interface {
	// Countries maps each resolvable IP to a country code. IPs absent
	// from the result could not be resolved.
	Countries(ctx context.Context, ips []string) (map[string]string, error)
}
