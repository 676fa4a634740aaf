// Package norway looks up units in the Brønnøysund Register Centre's Central
// Coordinating Register for Legal Entities (Enhetsregisteret).
package norway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
)

const (
	DefaultBaseURL   = "https://data.brreg.no/enhetsregisteret/api"
	IssuingAuthority = "Brønnøysundregistrene"

	// LivenessOrganization is a main unit known to exist, used by health checks.
	LivenessOrganization = "985619433"

	orgNumberLength = 9
)

// Doer sends requests through a resilience client.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*resilience.Response, error)
}

// Provider implements providers.Provider for Norway.
type Provider struct {
	doer     Doer
	baseURL  string
	subunits bool
	logger   *slog.Logger
}

type Option func(*Provider)

// WithBaseURL overrides the Enhetsregisteret API root.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithSubunitFallback controls whether a missing main unit is retried as a sub-unit.
func WithSubunitFallback(enabled bool) Option {
	return func(p *Provider) { p.subunits = enabled }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates the Norwegian adapter.
func New(doer Doer, opts ...Option) *Provider {
	p := &Provider{
		doer:     doer,
		baseURL:  DefaultBaseURL,
		subunits: true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Provider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionNorway
}

// Fetch looks up a nine digit organisation number. Deleted or closed units are
// reported as not found.
func (p *Provider) Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error) {
	orgNumber := normalize.DigitsOnly(nationalID)
	if len(orgNumber) != orgNumberLength {
		return nil, providers.InvalidInput("notation", "Invalid identifier format").WithJurisdiction(models.JurisdictionNorway)
	}

	u, err := p.lookup(ctx, "enheter", orgNumber)
	if err != nil && p.subunits && providers.GetCategory(err) == providers.CategoryNotFound {
		p.logger.DebugContext(ctx, "main unit not found, trying sub-units", "notation", orgNumber)
		u, err = p.lookup(ctx, "underenheter", orgNumber)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "company lookup failed",
			"jurisdiction", models.JurisdictionNorway.String(),
			"identifier", identifier,
			"error", err,
		)
		return nil, providers.Tag(err, models.JurisdictionNorway)
	}

	if u.deleted() {
		return nil, providers.NotFound("Organisation does not exist or has been deleted").WithJurisdiction(models.JurisdictionNorway)
	}

	rec, err := mapUnit(u)
	if err != nil {
		return nil, providers.Tag(err, models.JurisdictionNorway)
	}
	p.logger.InfoContext(ctx, "retrieved company information",
		"jurisdiction", models.JurisdictionNorway.String(),
		"notation", orgNumber,
	)
	return rec, nil
}

func (p *Provider) lookup(ctx context.Context, kind, orgNumber string) (*unit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+kind+"/"+orgNumber, nil)
	if err != nil {
		return nil, providers.ServerError("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.OK():
	case resp.Status == http.StatusNotFound || resp.Status == http.StatusGone:
		return nil, providers.NotFound("Organisation does not exist or has been deleted")
	case resp.Status == http.StatusBadRequest:
		return nil, providers.InvalidInput("notation", "Upstream source indicated an invalid organisation number")
	default:
		return nil, providers.FromUpstream(resp.Status, resp.Body)
	}

	var u unit
	if err := json.Unmarshal(resp.Body, &u); err != nil {
		return nil, providers.UpstreamPermanent("Did not understand the data model returned from upstream source", err)
	}
	return &u, nil
}

func mapUnit(u *unit) (*models.CompanyRecord, error) {
	registered, err := models.ParseDate(u.RegistrationDate)
	if err != nil {
		return nil, providers.UpstreamPermanent("Unit has no valid registration date", err)
	}
	form, err := models.LegalFormFor(models.JurisdictionNorway.String(), u.Form.Code)
	if err != nil {
		return nil, providers.ServerError("Unknown legal form code NO_"+u.Form.Code, err)
	}

	rec := &models.CompanyRecord{
		Identifier: models.Identifier{
			IssuingAuthorityName: IssuingAuthority,
			Notation:             u.OrganizationNumber,
		},
		Name:             u.Name,
		RegistrationDate: registered,
		LegalForm:        models.LegalForm{Code: form, Type: u.Form.Description},
		LegalStatus:      normalize.LegalStatus(u.CompulsoryDissolution, u.Liquidation, u.Bankrupt),
		Activity:         normalize.NACEActivities(u.industryCodes()...),
	}

	business := u.BusinessAddress
	if business == nil {
		business = u.LocationAddress
	}
	reg, postal := business.toAddress(), u.PostalAddress.toAddress()
	if reg != nil || postal != nil {
		rec.Addresses = &models.Addresses{PostalAddress: postal, RegisteredAddress: reg}
	}
	return rec, nil
}
