package finland

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"strings"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/providers/gateway"
)

// GatewayProvider implements providers.Provider against the Finnish NSG gateway,
// reached through a TLS-terminating proxy.
type GatewayProvider struct {
	doer   gateway.Doer
	url    string
	logger *slog.Logger
}

// NewGateway creates the gateway adapter posting to url.
func NewGateway(doer gateway.Doer, url string, logger *slog.Logger) *GatewayProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &GatewayProvider{doer: doer, url: url, logger: logger}
}

// ProxyTarget fills the {0} placeholder of proxyURL with target stripped of its
// https scheme. An empty proxyURL returns target.
func ProxyTarget(proxyURL, target string) string {
	if proxyURL == "" {
		return target
	}
	return strings.ReplaceAll(proxyURL, "{0}", strings.TrimPrefix(target, "https://"))
}

// GatewayHTTPClient returns the client used for the proxy. The proxy presents a
// certificate that does not match its host, so verification is disabled here and
// nowhere else.
func GatewayHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // proxy certificate is not verifiable
	return &http.Client{Transport: transport}
}

func (p *GatewayProvider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionFinland
}

func (p *GatewayProvider) Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error) {
	notation := strings.TrimSpace(nationalID)
	if notation == "" {
		return nil, providers.InvalidInput("notation", "Notation is required").WithJurisdiction(models.JurisdictionFinland)
	}

	req, err := gateway.NewJSONRequest(ctx, http.MethodPost, p.url, gateway.Request{
		Notation: notation,
		Country:  models.JurisdictionFinland.String(),
	})
	if err != nil {
		return nil, providers.ServerError("build request", err).WithJurisdiction(models.JurisdictionFinland)
	}

	rec, err := gateway.Execute(ctx, p.doer, req, models.JurisdictionFinland, notation)
	if err != nil {
		p.logger.WarnContext(ctx, "company lookup failed", "jurisdiction", "FI", "identifier", identifier, "error", err)
		return nil, err
	}
	p.logger.InfoContext(ctx, "retrieved company information", "jurisdiction", "FI", "notation", notation)
	return rec, nil
}
