// Package sweden looks up companies through the Swedish NSG gateway
// (Bolagsverket), authenticating with an OAuth2 client-credentials token.
package sweden

import (
	"context"
	"log/slog"
	"net/http"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/providers/gateway"
	"nsg/internal/registry/token"
)

// TokenKey identifies the Swedish credentials in the token manager.
const TokenKey = "TokenSE"

// TokenSource hands out bearer tokens. *token.Manager implements it.
type TokenSource interface {
	Acquire(ctx context.Context, key string) (token.Token, error)
}

// Provider implements providers.Provider for Sweden.
type Provider struct {
	doer   gateway.Doer
	tokens TokenSource
	url    string
	logger *slog.Logger
}

// New creates the Swedish adapter posting lookups to url.
func New(doer gateway.Doer, tokens TokenSource, url string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{doer: doer, tokens: tokens, url: url, logger: logger}
}

func (p *Provider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionSweden
}

// Fetch strips the organisation number to digits, acquires a token and posts
// the lookup.
func (p *Provider) Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error) {
	notation := normalize.DigitsOnly(nationalID)
	if notation == "" {
		return nil, providers.InvalidInput("notation", "Invalid identifier format").WithJurisdiction(models.JurisdictionSweden)
	}

	tok, err := p.tokens.Acquire(ctx, TokenKey)
	if err != nil {
		p.logger.WarnContext(ctx, "token acquisition failed", "jurisdiction", "SE", "error", err)
		return nil, providers.Tag(err, models.JurisdictionSweden)
	}

	req, err := gateway.NewJSONRequest(ctx, http.MethodPost, p.url, gateway.Request{Notation: notation})
	if err != nil {
		return nil, providers.ServerError("build request", err).WithJurisdiction(models.JurisdictionSweden)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json;charset=utf-8")

	rec, err := gateway.Execute(ctx, p.doer, req, models.JurisdictionSweden, notation)
	if err != nil {
		p.logger.WarnContext(ctx, "company lookup failed", "jurisdiction", "SE", "identifier", identifier, "error", err)
		return nil, err
	}
	p.logger.InfoContext(ctx, "retrieved company information", "jurisdiction", "SE", "notation", notation)
	return rec, nil
}
