package storefront

import (
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// DefaultBaseURL is the app storefront sales API endpoint.
const DefaultBaseURL = "https://api.storefront.example.com"

// DefaultPageSize is the per-request sale row limit.
const DefaultPageSize = 200

// Config holds the storefront API settings.
type Config struct {
	// APIKey authenticates sales requests. Required.
	APIKey string

	// VendorID scopes requests to one vendor account. Required.
	VendorID string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// PageSize is the per-request row limit. Defaults to DefaultPageSize.
	PageSize int
}

// ConfigFromStore reads the provider settings from process configuration.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		APIKey:   store.GetString("storefront.api_key"),
		VendorID: store.GetString("storefront.vendor_id"),
		BaseURL:  store.GetString("storefront.base_url"),
		PageSize: store.GetInt("storefront.page_size"),
	}
}

// Enabled reports whether the required credentials are present.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.VendorID != ""
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c Config) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return DefaultPageSize
}
