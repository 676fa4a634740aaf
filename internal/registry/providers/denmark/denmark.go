// Package denmark reserves the Danish jurisdiction. No registry integration
// exists yet, so every lookup reports NotImplemented.
package denmark

import (
	"context"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
)

type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionDenmark
}

func (p *Provider) Fetch(_ context.Context, _, _ string) (*models.CompanyRecord, error) {
	return nil, providers.NotImplemented("Lookups in the Danish business register are not supported").
		WithJurisdiction(models.JurisdictionDenmark)
}
