package buttondown

import (
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// DefaultBaseURL is the email platform API endpoint.
const DefaultBaseURL = "https://api.buttondown.email"

// Config holds the email platform settings.
type Config struct {
	// APIKey is the account token. Empty disables the source.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// ConfigFromStore reads the provider settings from process configuration.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		APIKey:  store.GetString("buttondown.api_key"),
		BaseURL: store.GetString("buttondown.base_url"),
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
