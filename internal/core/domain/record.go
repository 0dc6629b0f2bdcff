package domain

import (
	"encoding/json"
	"time"
)

// RawRecord is one provider record exactly as fetched, before
// normalisation. The connector owns the payload until the normaliser
// embeds it in a canonical row.
type RawRecord struct {
	Source  SourceID
	Payload json.RawMessage
}

// Canonical records: one typed variant per collection. Each carries its
// natural key fields, typed business fields, and the provider's
// original payload for forensic replay. Records are constructed fresh
// on every fetch and superseded entirely by later writes to the same
// key; there is no field-level merge.

// Payment is one completed checkout session from the payments provider.
// Key: SessionID.
type Payment struct {
	SessionID string
	Created   time.Time
	// AmountTotal is in the smallest currency unit.
	AmountTotal int64
	Currency    string
	Status      string
	// EmailHash is the SHA-256 of the lower-cased customer email.
	// Raw addresses are never persisted.
	EmailHash *string
	Country   *string
	Raw       json.RawMessage
}

// AdEarning is one report row from the first ad platform.
// Key: Date+Account+AdUnit+Country.
type AdEarning struct {
	Date        string // YYYY-MM-DD
	Account     string
	AdUnit      string
	Country     *string
	PageViews   int64
	Impressions int64
	Clicks      int64
	Earnings    float64
	// RPM is earnings per thousand page views; nil when PageViews is 0.
	RPM *float64
	Raw json.RawMessage
}

// AdPerformance is one feed row from the second ad platform.
// Key: Date+Advertiser+AdID.
type AdPerformance struct {
	Date        string // YYYY-MM-DD
	Advertiser  string
	AdID        string
	Impressions int64
	Clicks      int64
	Spend       float64
	// CPC is spend per click; nil when Clicks is 0.
	CPC *float64
	// CPM is spend per thousand impressions; nil when Impressions is 0.
	CPM *float64
	Raw json.RawMessage
}

// Subscriber is one list member from the email platform.
// Key: SubscriberID.
type Subscriber struct {
	SubscriberID string
	// EmailHash is the SHA-256 of the lower-cased address.
	EmailHash  string
	Subscribed time.Time
	Status     string
	// Country comes from best-effort IP enrichment; nil when the
	// lookup failed or no IP was recorded.
	Country *string
	Tags    []string
	Raw     json.RawMessage
}

// AppSale is one per-app daily sales row from the storefront API.
// Key: Date+AppID+Country+Currency.
type AppSale struct {
	Date     string // YYYY-MM-DD
	AppID    string
	Country  string
	Currency string
	Units    int64
	Proceeds float64
	Refunds  int64
	Raw      json.RawMessage
}
