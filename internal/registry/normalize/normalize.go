// Package normalize holds the mapping helpers shared by the jurisdiction adapters.
package normalize

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"nsg/internal/registry/models"
)

const (
	// AddressDelimiter separates the parts of a full address.
	AddressDelimiter = ";"

	NACEClassification = "http://data.europa.eu/ux2/nace2/nace2"
	naceReferenceBase  = "http://data.europa.eu/ux2/nace2/"

	maxActivities = 3
)

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// CountryName resolves a two letter country code to its English name. Unknown
// codes are returned as given.
func CountryName(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

// ISO3 converts a two letter country code to ISO 3166 alpha-3, or "" when unknown.
func ISO3(code string) string {
	region, err := language.ParseRegion(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return ""
	}
	return region.ISO3()
}

// NewAddress assembles the full address from lines, post code, post name and the
// country name of countryCode. Empty parts are skipped. It returns nil when there
// is nothing to show.
func NewAddress(lines []string, postCode, postName, countryCode string) *models.Address {
	var kept []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	postCode = strings.TrimSpace(postCode)
	postName = strings.TrimSpace(postName)
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))

	parts := append([]string{}, kept...)
	for _, p := range []string{postCode, postName, CountryName(countryCode)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &models.Address{
		FullAddress: strings.Join(parts, AddressDelimiter),
		Lines:       kept,
		PostCode:    postCode,
		PostName:    postName,
		CountryCode: countryCode,
	}
}

// NACEActivity turns a registry industry code like "62.010" into an activity
// entry with the dot-stripped first four digits. ok is false for blank codes.
func NACEActivity(code string, sequence int) (models.Activity, bool) {
	digits := strings.ReplaceAll(strings.TrimSpace(code), ".", "")
	if digits == "" {
		return models.Activity{}, false
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return models.Activity{
		Code:             digits,
		InClassification: NACEClassification,
		Reference:        naceReferenceBase + digits,
		Sequence:         sequence,
	}, true
}

// NACEActivities maps up to three codes in order, numbering the kept ones from 1.
func NACEActivities(codes ...string) []models.Activity {
	var out []models.Activity
	for _, c := range codes {
		if len(out) == maxActivities {
			break
		}
		if a, ok := NACEActivity(c, len(out)+1); ok {
			out = append(out, a)
		}
	}
	return out
}

// LegalStatus is SOME_REGISTERED when any distress flag is set.
func LegalStatus(flags ...bool) models.LegalStatus {
	for _, f := range flags {
		if f {
			return models.LegalStatusSomeRegistered
		}
	}
	return models.LegalStatusNoRegistered
}

// LatestOpen returns the most recently registered item that has no end date.
// Items sharing a registration date keep their input order.
func LatestOpen[T any](items []T, registered func(T) time.Time, open func(T) bool) (T, bool) {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return registered(sorted[i]).After(registered(sorted[j]))
	})
	for _, it := range sorted {
		if open(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Latest returns the most recently registered item. Ties keep input order.
func Latest[T any](items []T, registered func(T) time.Time) (T, bool) {
	return LatestOpen(items, registered, func(T) bool { return true })
}
