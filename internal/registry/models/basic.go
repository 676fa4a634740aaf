package models

// BasicInformation is the company-basic-information document, loosely based on
// the STIRData business data model.
type BasicInformation struct {
	Identifier             string                 `json:"Identifier"`
	RegisteredOrganization RegisteredOrganization `json:"RegisteredOrganization"`
	Address                BasicAddress           `json:"Address"`
}

// RegisteredOrganization holds the legal entity facts.
type RegisteredOrganization struct {
	LegalName       string `json:"legalName"`
	FoundingDate    string `json:"foundingDate"`
	DissolutionDate string `json:"dissolutionDate,omitempty"`
	Jurisdiction    string `json:"jurisdiction,omitempty"`
}

// BasicAddress follows the ISA core location vocabulary.
type BasicAddress struct {
	Thoroughfare      string `json:"thoroughfare"`
	PostName          string `json:"postName"`
	PostCode          string `json:"postCode"`
	AdminUnitL1       string `json:"adminUnitL1"`
	AddressArea       string `json:"addressArea,omitempty"`
	LocatorDesignator string `json:"locatorDesignator,omitempty"`
	AdminUnitL2       string `json:"adminUnitL2,omitempty"`
}
