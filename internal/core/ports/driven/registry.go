package driven

import (
	"github.com/parkerlabs/revpipe/internal/core/domain"
)

// PipelineRegistry maps each source to its provider and normaliser.
// The mapping is static: it is built once at bootstrap from the closed
// source set.
type PipelineRegistry interface {
	// Provider returns the provider for a source.
	Provider(source domain.SourceID) (Provider, error)

	// Normaliser returns the normaliser for a source.
	Normaliser(source domain.SourceID) (Normaliser, error)

	// Sources lists the registered sources in stable order.
	Sources() []domain.SourceID
}
