package normalize

import (
	"strings"

	"nsg/internal/registry/models"
)

// BasicInformation projects a canonical record onto the company-basic-information
// document. identifier is the ICD-qualified id the caller asked for and country
// the jurisdiction's two letter code.
func BasicInformation(identifier, country string, rec *models.CompanyRecord) models.BasicInformation {
	out := models.BasicInformation{
		Identifier: identifier,
		RegisteredOrganization: models.RegisteredOrganization{
			LegalName:    rec.Name,
			FoundingDate: rec.RegistrationDate.String(),
			Jurisdiction: ISO3(country),
		},
	}
	if rec.Dissolved() {
		out.RegisteredOrganization.DissolutionDate = rec.DissolutionDate.String()
	}

	addr := rec.PreferredAddress()
	if addr == nil {
		return out
	}
	out.Address = models.BasicAddress{
		Thoroughfare: strings.Join(addr.Lines, ", "),
		PostName:     addr.PostName,
		PostCode:     addr.PostCode,
		AdminUnitL1:  CountryName(addr.CountryCode),
	}
	if out.Address.AdminUnitL1 == "" {
		out.Address.AdminUnitL1 = CountryName(country)
	}
	return out
}
