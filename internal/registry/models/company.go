package models

// LegalStatus flags whether extraordinary circumstances (bankruptcy, liquidation,
// compulsory dissolution) are registered against a company.
type LegalStatus string

const (
	LegalStatusNoRegistered   LegalStatus = "NO_REGISTERED"
	LegalStatusSomeRegistered LegalStatus = "SOME_REGISTERED"
)

// Name is the human readable form used on the gateway wire format.
func (s LegalStatus) Name() string {
	if s == LegalStatusSomeRegistered {
		return "Some extraordinary circumstances registered"
	}
	return "No extraordinary circumstances registered"
}

// Identifier names the register that issued a company number.
type Identifier struct {
	IssuingAuthorityName string `json:"issuingAuthorityName"`
	Notation             string `json:"notation"`
}

// LegalForm is a validated country-prefixed legal form code plus the registry's
// own description of it.
type LegalForm struct {
	Code LegalFormCode `json:"code"`
	Type string        `json:"type,omitempty"`
}

// Address carries the assembled full address. The structured parts are kept for
// documents that need them but are not part of the canonical JSON.
type Address struct {
	FullAddress string `json:"fullAddress"`

	Lines       []string `json:"-"`
	PostCode    string   `json:"-"`
	PostName    string   `json:"-"`
	CountryCode string   `json:"-"`
}

// Addresses groups the postal and registered (business) address.
type Addresses struct {
	PostalAddress     *Address `json:"postalAddress,omitempty"`
	RegisteredAddress *Address `json:"registeredAddress,omitempty"`
}

// Activity is one industry classification entry.
type Activity struct {
	Code             string `json:"code"`
	InClassification string `json:"inClassification"`
	Reference        string `json:"reference"`
	Sequence         int    `json:"sequence"`
}

// CompanyRecord is the jurisdiction independent company document.
type CompanyRecord struct {
	Identifier       Identifier  `json:"identifier"`
	Name             string      `json:"name"`
	RegistrationDate Date        `json:"registrationDate"`
	DissolutionDate  *Date       `json:"dissolutionDate,omitempty"`
	LegalForm        LegalForm   `json:"legalForm"`
	LegalStatus      LegalStatus `json:"legalStatus"`
	Addresses        *Addresses  `json:"addresses,omitempty"`
	Activity         []Activity  `json:"activity,omitempty"`
}

// Dissolved reports whether the record carries a dissolution date.
func (r *CompanyRecord) Dissolved() bool {
	return r.DissolutionDate != nil && !r.DissolutionDate.IsZero()
}

// PreferredAddress returns the registered address, falling back to the postal one.
func (r *CompanyRecord) PreferredAddress() *Address {
	if r.Addresses == nil {
		return nil
	}
	if r.Addresses.RegisteredAddress != nil {
		return r.Addresses.RegisteredAddress
	}
	return r.Addresses.PostalAddress
}
