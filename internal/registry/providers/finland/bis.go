// Package finland looks up companies registered with the Finnish Patent and
// Registration Office, either through the open-data BIS API or through the NSG
// gateway.
package finland

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
)

const (
	DefaultBISURL    = "https://avoindata.prh.fi/bis/v1"
	IssuingAuthority = "Finnish Patent and Registration Office"
)

var businessIDPattern = regexp.MustCompile(`^\d{7}-\d$`)

// Doer sends requests through a resilience client.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*resilience.Response, error)
}

// BISProvider implements providers.Provider against the BIS open-data API.
type BISProvider struct {
	doer    Doer
	baseURL string
	logger  *slog.Logger
}

type BISOption func(*BISProvider)

func WithBISURL(url string) BISOption {
	return func(p *BISProvider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

func WithBISLogger(logger *slog.Logger) BISOption {
	return func(p *BISProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewBIS(doer Doer, opts ...BISOption) *BISProvider {
	p := &BISProvider{
		doer:    doer,
		baseURL: DefaultBISURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *BISProvider) Jurisdiction() models.Jurisdiction {
	return models.JurisdictionFinland
}

// Fetch looks up a business id such as 0112038-9. Eight bare digits are accepted
// and given their check digit separator.
func (p *BISProvider) Fetch(ctx context.Context, nationalID, identifier string) (*models.CompanyRecord, error) {
	businessID, err := ParseBusinessID(nationalID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+businessID, nil)
	if err != nil {
		return nil, providers.ServerError("build request", err).WithJurisdiction(models.JurisdictionFinland)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.doer.Do(ctx, req)
	if err != nil {
		p.logger.WarnContext(ctx, "company lookup failed", "jurisdiction", "FI", "identifier", identifier, "error", err)
		return nil, providers.Tag(err, models.JurisdictionFinland)
	}
	switch {
	case resp.OK():
	case resp.Status == http.StatusNotFound:
		return nil, providers.NotFound("Upstream source could not find provided company-id").WithJurisdiction(models.JurisdictionFinland)
	case resp.Status == http.StatusBadRequest:
		return nil, providers.InvalidInput("notation", "Upstream source indicated an invalid company-id").WithJurisdiction(models.JurisdictionFinland)
	default:
		err := providers.FromUpstream(resp.Status, resp.Body).WithJurisdiction(models.JurisdictionFinland)
		p.logger.WarnContext(ctx, "company lookup failed", "jurisdiction", "FI", "identifier", identifier, "error", err)
		return nil, err
	}

	var body bisResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, providers.UpstreamPermanent("Did not understand the data model returned from upstream source", err).WithJurisdiction(models.JurisdictionFinland)
	}
	if len(body.Results) == 0 {
		return nil, providers.NotFound("Upstream source could not find provided company-id").WithJurisdiction(models.JurisdictionFinland)
	}

	rec, err := mapResult(businessID, &body.Results[0])
	if err != nil {
		return nil, providers.Tag(err, models.JurisdictionFinland)
	}
	p.logger.InfoContext(ctx, "retrieved company information", "jurisdiction", "FI", "notation", businessID)
	return rec, nil
}

// ParseBusinessID validates a Finnish business id (Y-tunnus).
func ParseBusinessID(raw string) (string, error) {
	id := strings.Join(strings.Fields(raw), "")
	if len(id) == 8 && normalize.DigitsOnly(id) == id {
		id = id[:7] + "-" + id[7:]
	}
	if !businessIDPattern.MatchString(id) {
		return "", providers.InvalidInput("notation", "Invalid identifier format").WithJurisdiction(models.JurisdictionFinland)
	}
	return id, nil
}

func mapResult(businessID string, r *result) (*models.CompanyRecord, error) {
	if r.RegistrationDate.IsZero() {
		return nil, providers.UpstreamPermanent("Company has no registration date", nil)
	}
	form, err := models.LegalFormFor(models.JurisdictionFinland.String(), r.CompanyForm)
	if err != nil {
		return nil, providers.ServerError("Unknown legal form code FI_"+r.CompanyForm, err)
	}

	notation := r.BusinessID
	if notation == "" {
		notation = businessID
	}
	rec := &models.CompanyRecord{
		Identifier:       models.Identifier{IssuingAuthorityName: IssuingAuthority, Notation: notation},
		Name:             r.Name,
		RegistrationDate: r.RegistrationDate,
		LegalForm:        models.LegalForm{Code: form, Type: r.companyFormName()},
		LegalStatus:      normalize.LegalStatus(len(r.Liquidations) > 0),
	}

	if liq, ok := normalize.Latest(r.Liquidations, func(l liquidation) time.Time { return l.RegistrationDate.Time }); ok && !liq.RegistrationDate.IsZero() {
		d := liq.RegistrationDate
		rec.DissolutionDate = &d
	}

	reg, postal := r.currentAddress(addressTypeStreet), r.currentAddress(addressTypePostal)
	if reg != nil || postal != nil {
		rec.Addresses = &models.Addresses{PostalAddress: postal, RegisteredAddress: reg}
	}
	return rec, nil
}
