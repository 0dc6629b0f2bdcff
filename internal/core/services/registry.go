package services

import (
	"fmt"
	"sort"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

// Ensure PipelineRegistry implements the interface.
var _ driven.PipelineRegistry = (*PipelineRegistry)(nil)

// PipelineRegistry is the static mapping from source identifier to its
// provider and normaliser. Sources form a closed set; the registry is
// assembled once at bootstrap and read-only afterwards.
type PipelineRegistry struct {
	providers   map[domain.SourceID]driven.Provider
	normalisers map[domain.SourceID]driven.Normaliser
}

// NewPipelineRegistry builds a registry from parallel provider and
// normaliser sets. Every provider must have a matching normaliser.
func NewPipelineRegistry(
	providers []driven.Provider,
	normalisers []driven.Normaliser,
) (*PipelineRegistry, error) {
	r := &PipelineRegistry{
		providers:   make(map[domain.SourceID]driven.Provider, len(providers)),
		normalisers: make(map[domain.SourceID]driven.Normaliser, len(normalisers)),
	}

	for _, p := range providers {
		if _, dup := r.providers[p.Source()]; dup {
			return nil, fmt.Errorf("duplicate provider for source %s", p.Source())
		}
		r.providers[p.Source()] = p
	}
	for _, n := range normalisers {
		if _, dup := r.normalisers[n.Source()]; dup {
			return nil, fmt.Errorf("duplicate normaliser for source %s", n.Source())
		}
		if err := n.Collection().Validate(); err != nil {
			return nil, fmt.Errorf("normaliser for %s: %w", n.Source(), err)
		}
		r.normalisers[n.Source()] = n
	}

	for src := range r.providers {
		if _, ok := r.normalisers[src]; !ok {
			return nil, fmt.Errorf("provider %s has no normaliser", src)
		}
	}

	return r, nil
}

// Provider returns the provider for a source.
func (r *PipelineRegistry) Provider(source domain.SourceID) (driven.Provider, error) {
	p, ok := r.providers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	return p, nil
}

// Normaliser returns the normaliser for a source.
func (r *PipelineRegistry) Normaliser(source domain.SourceID) (driven.Normaliser, error) {
	n, ok := r.normalisers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	return n, nil
}

// Sources lists registered sources in stable (lexicographic) order.
func (r *PipelineRegistry) Sources() []domain.SourceID {
	sources := make([]domain.SourceID, 0, len(r.providers))
	for src := range r.providers {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}
