package carbon

import (
	"encoding/json"
	"fmt"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser maps ad performance feed rows to canonical rows.
type Normaliser struct{}

// New creates an ad performance normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source this normaliser serves.
func (n *Normaliser) Source() domain.SourceID {
	return domain.SourceCarbon
}

// Collection returns the ad performance collection spec.
func (n *Normaliser) Collection() domain.CollectionSpec {
	return domain.AdPerformanceCollection
}

// feedRow is one row of the descending-time feed.
type feedRow struct {
	Date        string  `json:"date"`
	Advertiser  string  `json:"advertiser"`
	AdID        string  `json:"ad_id"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
}

// Normalise converts a feed row to an ad performance row. The derived
// unit costs are left null rather than divided by zero when the row saw
// no clicks or impressions.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Row, error) {
	var r feedRow
	if err := json.Unmarshal(raw.Payload, &r); err != nil {
		return nil, fmt.Errorf("parse feed row: %w", err)
	}
	if r.Date == "" || r.AdID == "" {
		return nil, fmt.Errorf("feed row missing date or ad id")
	}

	perf := domain.AdPerformance{
		Date:        r.Date,
		Advertiser:  r.Advertiser,
		AdID:        r.AdID,
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
		Spend:       r.Spend,
		Raw:         raw.Payload,
	}
	if r.Clicks > 0 {
		cpc := r.Spend / float64(r.Clicks)
		perf.CPC = &cpc
	}
	if r.Impressions > 0 {
		cpm := r.Spend / float64(r.Impressions) * 1000
		perf.CPM = &cpm
	}

	return perf.Row(), nil
}
