package adsense

import (
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// DefaultBaseURL is the ad platform reporting endpoint.
const DefaultBaseURL = "https://adsense.googleapis.com"

// Config holds the earnings report settings.
type Config struct {
	// Account is the publisher account id (pub-...). Required.
	Account string

	// APIKey authenticates report requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// ConfigFromStore reads the provider settings from process configuration.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		Account: store.GetString("adsense.account"),
		APIKey:  store.GetString("adsense.api_key"),
		BaseURL: store.GetString("adsense.base_url"),
	}
}

// Enabled reports whether the required credentials are present.
func (c Config) Enabled() bool {
	return c.Account != "" && c.APIKey != ""
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}
