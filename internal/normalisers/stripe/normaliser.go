package stripe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser maps checkout sessions to payment rows.
type Normaliser struct{}

// New creates a payments normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source this normaliser serves.
func (n *Normaliser) Source() domain.SourceID {
	return domain.SourceStripe
}

// Collection returns the payments collection spec.
func (n *Normaliser) Collection() domain.CollectionSpec {
	return domain.PaymentsCollection
}

// session is the subset of a checkout session the row needs.
type session struct {
	ID              string `json:"id"`
	Created         int64  `json:"created"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	CustomerDetails struct {
		Email   string `json:"email"`
		Address struct {
			Country string `json:"country"`
		} `json:"address"`
	} `json:"customer_details"`
}

// Normalise converts a checkout session to a payment row. The customer
// email is hashed before it ever leaves this function; the raw address
// is not persisted anywhere.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Row, error) {
	var s session
	if err := json.Unmarshal(raw.Payload, &s); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("checkout session missing id")
	}

	payment := domain.Payment{
		SessionID:   s.ID,
		Created:     time.Unix(s.Created, 0).UTC(),
		AmountTotal: s.AmountTotal,
		Currency:    strings.ToLower(s.Currency),
		Status:      s.Status,
		Raw:         raw.Payload,
	}
	if s.CustomerDetails.Email != "" {
		hash := hashEmail(s.CustomerDetails.Email)
		payment.EmailHash = &hash
	}
	if s.CustomerDetails.Address.Country != "" {
		country := s.CustomerDetails.Address.Country
		payment.Country = &country
	}

	return payment.Row(), nil
}

// hashEmail returns the hex SHA-256 of the lower-cased address.
func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
