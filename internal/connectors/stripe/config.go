package stripe

import (
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// DefaultBaseURL is the payments API endpoint.
const DefaultBaseURL = "https://api.stripe.com"

// defaultPageSize is the maximum page size the API accepts.
const defaultPageSize = 100

// Config holds the payments provider settings.
type Config struct {
	// APIKey is the secret key. Empty disables the source.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// PageSize is the requested page size, capped upstream at 100.
	PageSize int
}

// ConfigFromStore reads the provider settings from process
// configuration. Credentials are never hard-coded.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		APIKey:   store.GetString("stripe.api_key"),
		BaseURL:  store.GetString("stripe.base_url"),
		PageSize: store.GetInt("stripe.page_size"),
	}
}

// Enabled reports whether the required credentials are present.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c Config) pageSize() int {
	if c.PageSize > 0 && c.PageSize <= defaultPageSize {
		return c.PageSize
	}
	return defaultPageSize
}
