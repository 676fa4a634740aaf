// Package gateway speaks the NSG registered-organisations wire format shared by
// the Swedish, Icelandic and Finnish gateway registries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
)

// Request is the lookup body posted to gateway registries.
type Request struct {
	Country  string `json:"country,omitempty"`
	Notation string `json:"notation"`
}

// Response is a registered-organisations answer.
type Response struct {
	Activity          []models.Activity `json:"activity"`
	Identifier        models.Identifier `json:"identifier"`
	LegalForm         CodeName          `json:"legalform"`
	LegalStatus       CodeName          `json:"legalStatus"`
	Name              string            `json:"name"`
	PostalAddress     *FullAddress      `json:"postalAddress"`
	RegisteredAddress *FullAddress      `json:"registeredAddress"`
	RegistrationDate  string            `json:"registrationDate"`
}

// CodeName is a code with its display name.
type CodeName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type FullAddress struct {
	FullAddress string `json:"fullAddress"`
}

// Doer sends requests through a resilience client.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*resilience.Response, error)
}

// NewJSONRequest builds a request with a JSON body and the gateway headers.
// A nil body sends no payload.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Execute sends req and maps the answer for jurisdiction j. notation is used
// when the response omits the identifier.
func Execute(ctx context.Context, doer Doer, req *http.Request, j models.Jurisdiction, notation string) (*models.CompanyRecord, error) {
	resp, err := doer.Do(ctx, req)
	if err != nil {
		return nil, providers.Tag(err, j)
	}
	if !resp.OK() {
		return nil, providers.FromUpstream(resp.Status, resp.Body).WithJurisdiction(j)
	}

	var body Response
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, providers.UpstreamPermanent("Could not process response from external api", err).WithJurisdiction(j)
	}
	rec, err := Map(j, notation, &body)
	if err != nil {
		return nil, providers.Tag(err, j)
	}
	return rec, nil
}

// Map converts a gateway response to the canonical record.
func Map(j models.Jurisdiction, notation string, r *Response) (*models.CompanyRecord, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, providers.UpstreamPermanent("Response did not contain a company name", nil)
	}
	registered, err := models.ParseDate(strings.TrimSpace(r.RegistrationDate))
	if err != nil {
		return nil, providers.UpstreamPermanent("Response did not contain a valid registration date", err)
	}
	code, err := legalForm(j, r.LegalForm.Code)
	if err != nil {
		return nil, err
	}

	rec := &models.CompanyRecord{
		Identifier:       r.Identifier,
		Name:             r.Name,
		RegistrationDate: registered,
		LegalForm:        models.LegalForm{Code: code, Type: r.LegalForm.Name},
		LegalStatus:      legalStatus(r.LegalStatus.Code),
	}
	if rec.Identifier.Notation == "" {
		rec.Identifier.Notation = notation
	}

	postal, reg := address(r.PostalAddress), address(r.RegisteredAddress)
	if postal != nil || reg != nil {
		rec.Addresses = &models.Addresses{PostalAddress: postal, RegisteredAddress: reg}
	}
	if n := len(r.Activity); n > 0 {
		rec.Activity = r.Activity[:min(n, 3)]
	}
	return rec, nil
}

// legalForm prefixes bare codes with the jurisdiction and checks the result
// against that jurisdiction's table. A code carrying another country's prefix is
// rejected like an unknown one.
func legalForm(j models.Jurisdiction, raw string) (models.LegalFormCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code != "" && !strings.Contains(code, "_") {
		code = j.String() + "_" + code
	}
	parsed, err := models.ParseLegalForm(code)
	if err == nil && parsed.Country() != j.String() {
		err = fmt.Errorf("%w: %q is not a %s code", models.ErrUnknownLegalForm, code, j)
	}
	if err != nil {
		return "", providers.ServerError("Unknown legal form code "+code, err)
	}
	return parsed, nil
}

func legalStatus(code string) models.LegalStatus {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "SOME", string(models.LegalStatusSomeRegistered):
		return models.LegalStatusSomeRegistered
	default:
		return models.LegalStatusNoRegistered
	}
}

func address(a *FullAddress) *models.Address {
	if a == nil || strings.TrimSpace(a.FullAddress) == "" {
		return nil
	}
	return &models.Address{FullAddress: a.FullAddress}
}
