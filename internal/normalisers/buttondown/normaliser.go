package buttondown

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

// Normaliser maps subscriber list entries to canonical rows.
type Normaliser struct{}

// New creates a subscriber normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source this normaliser serves.
func (n *Normaliser) Source() domain.SourceID {
	return domain.SourceButtondown
}

// Collection returns the subscribers collection spec.
func (n *Normaliser) Collection() domain.CollectionSpec {
	return domain.SubscribersCollection
}

// subscriber is one list entry. The country field is injected by the
// connector's IP enrichment and is absent when that lookup failed.
type subscriber struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Subscribed string   `json:"subscribed"`
	Type       string   `json:"subscriber_type"`
	Tags       []string `json:"tags"`
	Country    string   `json:"country"`
}

// Normalise converts a subscriber entry to a canonical row. Addresses
// are hashed here and never persisted in the clear; the embedded raw
// payload keeps only what the provider sent, which includes the address,
// so the raw column is the one place operators must treat as sensitive.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Row, error) {
	var s subscriber
	if err := json.Unmarshal(raw.Payload, &s); err != nil {
		return nil, fmt.Errorf("parse subscriber: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("subscriber missing id")
	}
	if s.Email == "" {
		return nil, fmt.Errorf("subscriber %s missing email", s.ID)
	}

	subscribed, err := time.Parse(time.RFC3339, s.Subscribed)
	if err != nil {
		return nil, fmt.Errorf("subscriber %s: parse subscribed time: %w", s.ID, err)
	}

	sub := domain.Subscriber{
		SubscriberID: s.ID,
		EmailHash:    hashEmail(s.Email),
		Subscribed:   subscribed,
		Status:       s.Type,
		Tags:         s.Tags,
		Raw:          raw.Payload,
	}
	if s.Country != "" {
		country := s.Country
		sub.Country = &country
	}

	return sub.Row(), nil
}

// hashEmail returns the hex SHA-256 of the lower-cased address.
func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
