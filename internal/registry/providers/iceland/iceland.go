// Package iceland looks up companies through the Icelandic NSG gateway
// (Skatturinn), authenticating with an API management subscription key.
package iceland

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/providers/gateway"
)

// SubscriptionKeyHeader carries the API key expected by the gateway.
const SubscriptionKeyHeader = "ocp-apim-subscription-key"

// Provider implements providers.Provider for Iceland.
type Provider struct {
	doer            gateway.Doer
	urlTemplate     string
	subscriptionKey string
	logger          *slog.Logger
}

// New creates the Icelandic adapter. urlTemplate holds a {0} placeholder for the
// kennitala; without one the kennitala is appended as a path segment.
func New(doer gateway.Doer, urlTemplate, subscriptionKey string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		doer:            doer,
		urlTemplate:     urlTemplate,
		subscriptionKey: subscriptionKey,
		logger:          logger,
	}
}

func (p *Provider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionIceland
}

func (p *Provider) Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error) {
	kennitala := normalize.DigitsOnly(nationalID)
	if kennitala == "" {
		return nil, providers.InvalidInput("notation", "Invalid identifier format").WithJurisdiction(models.JurisdictionIceland)
	}

	req, err := gateway.NewJSONRequest(ctx, http.MethodGet, p.lookupURL(kennitala), nil)
	if err != nil {
		return nil, providers.ServerError("build request", err).WithJurisdiction(models.JurisdictionIceland)
	}
	req.Header.Set(SubscriptionKeyHeader, p.subscriptionKey)
	req.Header.Set("Accept", "application/json;charset=utf-8")

	rec, err := gateway.Execute(ctx, p.doer, req, models.JurisdictionIceland, kennitala)
	if err != nil {
		p.logger.WarnContext(ctx, "company lookup failed", "jurisdiction", "IS", "identifier", identifier, "error", err)
		return nil, err
	}
	p.logger.InfoContext(ctx, "retrieved company information", "jurisdiction", "IS", "notation", kennitala)
	return rec, nil
}

func (p *Provider) lookupURL(kennitala string) string {
	escaped := url.PathEscape(kennitala)
	if strings.Contains(p.urlTemplate, "{0}") {
		return strings.ReplaceAll(p.urlTemplate, "{0}", escaped)
	}
	return strings.TrimRight(p.urlTemplate, "/") + "/" + escaped
}
