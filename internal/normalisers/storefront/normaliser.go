package storefront

import (
	"encoding/json"
	"fmt"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser maps storefront sale rows to canonical rows.
type Normaliser struct{}

// New creates an app sales normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source this normaliser serves.
func (n *Normaliser) Source() domain.SourceID {
	return domain.SourceStorefront
}

// Collection returns the app sales collection spec.
func (n *Normaliser) Collection() domain.CollectionSpec {
	return domain.AppSalesCollection
}

// saleRow is one per-app daily sales row. The id field pages the feed
// and is not part of the canonical key; the same date+app+country+
// currency cell may be re-reported under a new id with corrected
// figures, and the later row must win.
type saleRow struct {
	Date     string  `json:"date"`
	AppID    string  `json:"app_id"`
	Country  string  `json:"country"`
	Currency string  `json:"currency"`
	Units    int64   `json:"units"`
	Proceeds float64 `json:"proceeds"`
	Refunds  int64   `json:"refunds"`
}

// Normalise converts a sale row to a canonical row.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Row, error) {
	var r saleRow
	if err := json.Unmarshal(raw.Payload, &r); err != nil {
		return nil, fmt.Errorf("parse sale row: %w", err)
	}
	if r.Date == "" || r.AppID == "" {
		return nil, fmt.Errorf("sale row missing date or app id")
	}

	sale := domain.AppSale{
		Date:     r.Date,
		AppID:    r.AppID,
		Country:  r.Country,
		Currency: r.Currency,
		Units:    r.Units,
		Proceeds: r.Proceeds,
		Refunds:  r.Refunds,
		Raw:      raw.Payload,
	}

	return sale.Row(), nil
}
