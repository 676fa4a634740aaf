package models

// Jurisdiction names a national registry this service can query.
type Jurisdiction string

const (
	JurisdictionNorway  Jurisdiction = "NO"
	JurisdictionSweden  Jurisdiction = "SE"
	JurisdictionFinland Jurisdiction = "FI"
	JurisdictionIceland Jurisdiction = "IS"
	JurisdictionDenmark Jurisdiction = "DK"
)

func (j Jurisdiction) String() string {
	return string(j)
}
