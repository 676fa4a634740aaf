package finland

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
)

const (
	addressTypeStreet = 1
	addressTypePostal = 2

	defaultCountry = "FI"
	postCodeLength = 5
)

type bisResponse struct {
	TotalResults int      `json:"totalResults"`
	Results      []result `json:"results"`
}

type result struct {
	BusinessID       string        `json:"businessId"`
	Name             string        `json:"name"`
	RegistrationDate models.Date   `json:"registrationDate"`
	CompanyForm      string        `json:"companyForm"`
	Liquidations     []liquidation `json:"liquidations"`
	Addresses        []address     `json:"addresses"`
	CompanyForms     []auxiliary   `json:"companyForms"`
}

type liquidation struct {
	RegistrationDate models.Date `json:"registrationDate"`
	Description      string      `json:"description"`
}

type auxiliary struct {
	Name             string       `json:"name"`
	Language         string       `json:"language"`
	RegistrationDate models.Date  `json:"registrationDate"`
	EndDate          *models.Date `json:"endDate"`
}

type address struct {
	CareOf           string       `json:"careOf"`
	Street           string       `json:"street"`
	PostCode         flexString   `json:"postCode"`
	Type             int          `json:"type"`
	City             string       `json:"city"`
	Country          string       `json:"country"`
	RegistrationDate models.Date  `json:"registrationDate"`
	EndDate          *models.Date `json:"endDate"`
}

func (a address) open() bool {
	return a.EndDate == nil || a.EndDate.IsZero()
}

// currentAddress picks the most recently registered open address of type t.
func (r *result) currentAddress(t int) *models.Address {
	var ofType []address
	for _, a := range r.Addresses {
		if a.Type == t {
			ofType = append(ofType, a)
		}
	}
	a, ok := normalize.LatestOpen(ofType,
		func(a address) time.Time { return a.RegistrationDate.Time },
		address.open,
	)
	if !ok {
		return nil
	}
	country := strings.TrimSpace(a.Country)
	if country == "" {
		country = defaultCountry
	}
	return normalize.NewAddress([]string{a.CareOf, a.Street}, postCode(string(a.PostCode)), a.City, country)
}

// postCode restores leading zeros lost when the code was sent as a number.
func postCode(pc string) string {
	if pc != "" && len(pc) < postCodeLength && normalize.DigitsOnly(pc) == pc {
		return strings.Repeat("0", postCodeLength-len(pc)) + pc
	}
	return pc
}

// companyFormName returns the English name of the current company form, or the
// first current one in any language.
func (r *result) companyFormName() string {
	var fallback string
	for _, f := range r.CompanyForms {
		if f.EndDate != nil && !f.EndDate.IsZero() {
			continue
		}
		if strings.EqualFold(f.Language, "EN") {
			return f.Name
		}
		if fallback == "" {
			fallback = f.Name
		}
	}
	return fallback
}

// flexString decodes a JSON string or number into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
