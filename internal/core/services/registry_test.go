package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkerlabs/revpipe/internal/core/domain"
	"github.com/parkerlabs/revpipe/internal/core/ports/driven"
)

func TestNewPipelineRegistry_Valid(t *testing.T) {
	registry, err := NewPipelineRegistry(
		[]driven.Provider{
			&fakeProvider{source: domain.SourceStripe},
			&fakeProvider{source: domain.SourceCarbon},
		},
		[]driven.Normaliser{
			&fakeNormaliser{source: domain.SourceStripe},
			&fakeNormaliser{source: domain.SourceCarbon},
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []domain.SourceID{domain.SourceCarbon, domain.SourceStripe}, registry.Sources())

	p, err := registry.Provider(domain.SourceStripe)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStripe, p.Source())

	n, err := registry.Normaliser(domain.SourceCarbon)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCarbon, n.Source())
}

func TestNewPipelineRegistry_DuplicateProvider(t *testing.T) {
	_, err := NewPipelineRegistry(
		[]driven.Provider{
			&fakeProvider{source: domain.SourceStripe},
			&fakeProvider{source: domain.SourceStripe},
		},
		[]driven.Normaliser{&fakeNormaliser{source: domain.SourceStripe}},
	)
	assert.Error(t, err)
}

func TestNewPipelineRegistry_MissingNormaliser(t *testing.T) {
	_, err := NewPipelineRegistry(
		[]driven.Provider{&fakeProvider{source: domain.SourceStripe}},
		nil,
	)
	assert.Error(t, err)
}

func TestPipelineRegistry_UnknownSource(t *testing.T) {
	registry, err := NewPipelineRegistry(nil, nil)
	require.NoError(t, err)

	_, err = registry.Provider(domain.SourceStripe)
	assert.ErrorIs(t, err, domain.ErrUnknownSource)

	_, err = registry.Normaliser(domain.SourceStripe)
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}
