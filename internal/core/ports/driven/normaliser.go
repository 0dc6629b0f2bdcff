package driven

import (
	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// Normaliser maps one provider's raw record shape to its canonical
// collection row. Implementations are pure per record: missing numeric
// fields default to 0 (aggregate sums stay correct), missing
// identifiers default to null, and PII is hashed irreversibly.
type Normaliser interface {
	// Source returns the source this normaliser serves.
	Source() domain.SourceID

	// Collection describes the target collection and its columns.
	Collection() domain.CollectionSpec

	// Normalise converts a raw record to a row in Collection order.
	Normalise(raw domain.RawRecord) (domain.Row, error)
}
