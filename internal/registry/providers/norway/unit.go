package norway

import (
	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
)

// unit covers both enheter and underenheter responses.
type unit struct {
	OrganizationNumber string `json:"organisasjonsnummer"`
	Name               string `json:"navn"`
	Form               struct {
		Code        string `json:"kode"`
		Description string `json:"beskrivelse"`
	} `json:"organisasjonsform"`
	RegistrationDate string `json:"registreringsdatoEnhetsregisteret"`
	DeletionDate     string `json:"slettedato"`
	ClosureDate      string `json:"nedleggelsesdato"`

	Bankrupt              bool `json:"konkurs"`
	Liquidation           bool `json:"underAvvikling"`
	CompulsoryDissolution bool `json:"underTvangsavviklingEllerTvangsopplosning"`

	BusinessAddress *address `json:"forretningsadresse"`
	LocationAddress *address `json:"beliggenhetsadresse"`
	PostalAddress   *address `json:"postadresse"`

	Industry1 *industryCode `json:"naeringskode1"`
	Industry2 *industryCode `json:"naeringskode2"`
	Industry3 *industryCode `json:"naeringskode3"`
}

type address struct {
	Lines       []string `json:"adresse"`
	PostCode    string   `json:"postnummer"`
	PostName    string   `json:"poststed"`
	CountryCode string   `json:"landkode"`
}

type industryCode struct {
	Code        string `json:"kode"`
	Description string `json:"beskrivelse"`
}

func (u *unit) deleted() bool {
	return u.DeletionDate != "" || u.ClosureDate != ""
}

func (u *unit) industryCodes() []string {
	var codes []string
	for _, c := range []*industryCode{u.Industry1, u.Industry2, u.Industry3} {
		if c != nil {
			codes = append(codes, c.Code)
		}
	}
	return codes
}

func (a *address) toAddress() *models.Address {
	if a == nil {
		return nil
	}
	return normalize.NewAddress(a.Lines, a.PostCode, a.PostName, a.CountryCode)
}
