package handler

import "encoding/json"

// RegisteredOrganisationsRequest is the body of POST /registered-organisations.
type RegisteredOrganisationsRequest struct {
	Country  string `json:"country"`
	Notation string `json:"notation"`
}

// CompanyBasicInformationRequest is the body of POST /company-basic-information.
type CompanyBasicInformationRequest struct {
	OrganizationNumber string `json:"organizationNumber"`
}

// EvidenceCode describes one dataset served by this source.
type EvidenceCode struct {
	EvidenceCodeName string          `json:"evidenceCodeName"`
	EvidenceSource   string          `json:"evidenceSource"`
	ServiceContext   string          `json:"serviceContext"`
	IsPublic         bool            `json:"isPublic"`
	Values           []EvidenceValue `json:"values"`
}

// EvidenceValue names a value of an evidence code and its JSON Schema.
type EvidenceValue struct {
	EvidenceValueName    string          `json:"evidenceValueName"`
	ValueType            string          `json:"valueType"`
	JSONSchemaDefinition json.RawMessage `json:"jsonSchemaDefinition"`
}
