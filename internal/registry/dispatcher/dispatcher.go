// Package dispatcher routes a lookup to the adapter for its jurisdiction, either
// by country code or by an ISO/IEC 6523 qualified identifier.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nsg/internal/registry/metrics"
	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
)

// ICD prefixes of the supported ISO/IEC 6523 identifier schemes.
const (
	ICDNorway  = "0192"
	ICDFinland = "0212"
)

// countries maps accepted country codes to jurisdictions. DE is the legacy code
// Denmark was requested with.
var countries = map[string]models.Jurisdiction{
	"NO": models.JurisdictionNorway,
	"SE": models.JurisdictionSweden,
	"FI": models.JurisdictionFinland,
	"IS": models.JurisdictionIceland,
	"DK": models.JurisdictionDenmark,
	"DE": models.JurisdictionDenmark,
}

// Dispatcher is stateless apart from its routing tables, which are fixed at
// construction.
type Dispatcher struct {
	byCountry *providers.Registry
	byScheme  map[string]providers.Provider
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Dispatcher)

// WithScheme routes identifiers with the given ICD prefix to p.
func WithScheme(icd string, p providers.Provider) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.byScheme[icd] = p
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a dispatcher over the country registry.
func New(byCountry *providers.Registry, opts ...Option) (*Dispatcher, error) {
	if byCountry == nil {
		return nil, errors.New("provider registry is required")
	}
	d := &Dispatcher{
		byCountry: byCountry,
		byScheme:  make(map[string]providers.Provider),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// ParseCountry resolves a country code, trimmed and case-insensitive.
func ParseCountry(country string) (models.Jurisdiction, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if j, ok := countries[code]; ok {
		return j, nil
	}
	return "", providers.InvalidInput("country", "Invalid Country code")
}

// ByCountry looks up notation in the registry of country.
func (d *Dispatcher) ByCountry(ctx context.Context, country, notation string) (*models.CompanyRecord, error) {
	j, err := ParseCountry(country)
	if err != nil {
		return nil, err
	}
	p, ok := d.byCountry.Get(j)
	if !ok {
		return nil, providers.NotImplemented(fmt.Sprintf("No registry is configured for %s", j)).WithJurisdiction(j)
	}
	return d.fetch(ctx, p, notation, notation)
}

// SplitIdentifier splits "<ICD>:<national id>".
func SplitIdentifier(identifier string) (icd, nationalID string, err error) {
	parts := strings.Split(identifier, ":")
	if len(parts) != 2 {
		return "", "", providers.InvalidInput("organizationNumber",
			fmt.Sprintf("'%s' has an unknown format. Expects a ISO/IEC 6523 identifier + \":\" + company-id", identifier))
	}
	return parts[0], parts[1], nil
}

// ByICD looks up an ISO/IEC 6523 qualified identifier such as 0192:923609016 and
// reports which jurisdiction answered.
func (d *Dispatcher) ByICD(ctx context.Context, identifier string) (*models.CompanyRecord, models.Jurisdiction, error) {
	icd, nationalID, err := SplitIdentifier(identifier)
	if err != nil {
		return nil, "", err
	}
	p, ok := d.byScheme[icd]
	if !ok {
		return nil, "", providers.UnsupportedIdentifier(fmt.Sprintf(
			"%s is not a recognized ISO/IEC 6523 identifier. Supported ICDs are %s (Norway) and %s (Finland).",
			icd, ICDNorway, ICDFinland))
	}
	rec, err := d.fetch(ctx, p, nationalID, identifier)
	return rec, p.Jurisdiction(), err
}

func (d *Dispatcher) fetch(ctx context.Context, p providers.Provider, nationalID, identifier string) (*models.CompanyRecord, error) {
	start := time.Now()
	rec, err := p.Fetch(ctx, nationalID, identifier)
	outcome := "success"
	if err != nil {
		outcome = string(providers.GetCategory(err))
	}
	d.metrics.ObserveLookup(p.Jurisdiction().String(), outcome, time.Since(start))
	return rec, err
}
