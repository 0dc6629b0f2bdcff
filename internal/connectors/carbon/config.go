package carbon

import (
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// DefaultBaseURL is the ad platform API endpoint.
const DefaultBaseURL = "https://api.carbonads.net"

// defaultPageSize is the fixed report page size.
const defaultPageSize = 100

// Config holds the ad performance feed settings.
type Config struct {
	// APIKey authenticates report requests. Empty disables the source.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// PageSize is the fixed page size for report pages.
	PageSize int
}

// ConfigFromStore reads the provider settings from process configuration.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		APIKey:   store.GetString("carbon.api_key"),
		BaseURL:  store.GetString("carbon.base_url"),
		PageSize: store.GetInt("carbon.page_size"),
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
	if c.PageSize > 0 {
		return c.PageSize
	}
	return defaultPageSize
}
