package domain

import "fmt"

// SourceID identifies one external data provider.
// The set of sources is closed; new providers require a new constant,
// a connector and a normaliser.
type SourceID string

// Known sources.
const (
	// SourceStripe is the payments provider (checkout sessions).
	SourceStripe SourceID = "stripe"

	// SourceAdSense is the first ad platform (per-unit earnings reports).
	SourceAdSense SourceID = "adsense"

	// SourceCarbon is the second ad platform (per-ad performance feed).
	SourceCarbon SourceID = "carbon"

	// SourceButtondown is the email platform (subscriber list).
	SourceButtondown SourceID = "buttondown"

	// SourceStorefront is the storefront sales API (per-app daily sales).
	SourceStorefront SourceID = "storefront"
)

// AllSources returns every known source in stable order.
func AllSources() []SourceID {
	return []SourceID{
		SourceStripe,
		SourceAdSense,
		SourceCarbon,
		SourceButtondown,
		SourceStorefront,
	}
}

// ParseSourceID validates a source identifier string.
func ParseSourceID(s string) (SourceID, error) {
	for _, id := range AllSources() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

// String returns the identifier as a plain string.
func (s SourceID) String() string {
	return string(s)
}
