package adsense

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser maps earnings report rows to ad earning rows. Report rows
// carry no account of their own, so the normaliser stamps each row with
// the configured publisher account.
type Normaliser struct {
	account string
}

// New creates an earnings normaliser for one publisher account.
func New(account string) *Normaliser {
	return &Normaliser{account: account}
}

// Source returns the source this normaliser serves.
func (n *Normaliser) Source() domain.SourceID {
	return domain.SourceAdSense
}

// Collection returns the ad earnings collection spec.
func (n *Normaliser) Collection() domain.CollectionSpec {
	return domain.AdEarningsCollection
}

// reportRow is one report cell group. Metric values arrive as strings.
type reportRow struct {
	Date        string `json:"date"`
	AdUnit      string `json:"ad_unit"`
	Country     string `json:"country"`
	PageViews   string `json:"page_views"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Earnings    string `json:"earnings"`
}

// Normalise converts a report row to an ad earning row. Missing metrics
// default to zero so daily sums stay correct; RPM is derived only when
// page views are present.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Row, error) {
	var r reportRow
	if err := json.Unmarshal(raw.Payload, &r); err != nil {
		return nil, fmt.Errorf("parse report row: %w", err)
	}
	if r.Date == "" || r.AdUnit == "" {
		return nil, fmt.Errorf("report row missing date or ad unit")
	}

	earning := domain.AdEarning{
		Date:        r.Date,
		Account:     n.account,
		AdUnit:      r.AdUnit,
		PageViews:   parseCount(r.PageViews),
		Impressions: parseCount(r.Impressions),
		Clicks:      parseCount(r.Clicks),
		Earnings:    parseAmount(r.Earnings),
		Raw:         raw.Payload,
	}
	if r.Country != "" {
		country := r.Country
		earning.Country = &country
	}
	if earning.PageViews > 0 {
		rpm := earning.Earnings / float64(earning.PageViews) * 1000
		earning.RPM = &rpm
	}

	return earning.Row(), nil
}

func parseCount(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
