package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLegalForm is returned when a code is not in the legal form table.
var ErrUnknownLegalForm = errors.New("unknown legal form code")

// LegalFormCode is a country-prefixed legal form such as NO_AS or FI_OY.
type LegalFormCode string

// Country returns the two letter prefix of the code.
func (c LegalFormCode) Country() string {
	prefix, _, ok := strings.Cut(string(c), "_")
	if !ok {
		return ""
	}
	return prefix
}

var legalFormCodes = map[string][]string{
	"FI": {
		"AHVE", "AHVELL", "AOY", "ASH", "ASY", "AY", "AYH", "ELSYH", "ESAA", "ETS", "ETY",
		"EUOKKT", "EVL", "EVLUT", "EYHT", "HYYH", "KK", "KONK", "KOY", "KP", "KUNT", "KUNTLL",
		"KUNTLLL", "KUNTYHT", "KVAKYH", "KVJ", "KVY", "KY", "LIY", "MHY", "MJUO", "MOHLO",
		"MSAA", "MTYH", "MUU", "MUUKOY", "MUVE", "MUYP", "MYH", "OK", "OP", "ORTO", "OY", "OYJ",
		"PK", "PY", "SAA", "SCE", "SCP", "SE", "SL", "SP", "TEKA", "TYH", "TYKA", "ULKO", "UYK",
		"VAKK", "VALT", "VALTLL", "VEYHT", "VOJ", "VOY", "VY", "YEH", "YHME", "YHTE", "YO",
	},
	"IS": {
		"BS", "EHF", "EINS", "FEL", "HF", "OHF", "SES", "SF", "SLF", "SVF",
	},
	"NO": {
		"AAFY", "ADOS", "ANNA", "ANS", "AS", "ASA", "BA", "BBL", "BEDR", "BO", "BRL", "DA",
		"ENK", "EOEFG", "ESEK", "FKF", "FLI", "FYLK", "GFS", "IKJP", "IKS", "KBO", "KF", "KIRK",
		"KOMM", "KS", "KTRF", "NUF", "OPMV", "ORGL", "PERS", "PK", "PRE", "SA", "SAER", "SAM",
		"SE", "SF", "SPA", "STAT", "STI", "TVAM", "VPFO",
	},
	"SE": {
		"AB", "BAB", "BF", "BFL", "BRF", "E", "EB", "EEIG", "EGTS", "EK", "FAB", "FL", "FOF",
		"HB", "I", "KB", "KHF", "MB", "OFB", "S", "SB", "SCE", "SE", "SF", "TSF",
	},
}

var legalForms = buildLegalForms()

func buildLegalForms() map[string]LegalFormCode {
	forms := make(map[string]LegalFormCode)
	for country, codes := range legalFormCodes {
		for _, code := range codes {
			full := country + "_" + code
			forms[full] = LegalFormCode(full)
		}
	}
	return forms
}

// HasLegalForms reports whether codes for the country are validated.
func HasLegalForms(country string) bool {
	_, ok := legalFormCodes[country]
	return ok
}

// ParseLegalForm looks up a full code such as "NO_AS".
func ParseLegalForm(code string) (LegalFormCode, error) {
	if c, ok := legalForms[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLegalForm, code)
}

// LegalFormFor prefixes a registry's raw code with its country and validates it.
func LegalFormFor(country, raw string) (LegalFormCode, error) {
	return ParseLegalForm(country + "_" + strings.TrimSpace(raw))
}
