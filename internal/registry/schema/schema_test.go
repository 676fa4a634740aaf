package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
)

// violationAt returns the first violation reported for the instance location.
func violationAt(t *testing.T, verr *ValidationError, location string) string {
	t.Helper()
	for _, v := range verr.Violations {
		if strings.HasPrefix(v, location+": ") {
			return v
		}
	}
	t.Fatalf("no violation at %s in %v", location, verr.Violations)
	return ""
}

func TestBasicInformation_IsDraft04Object(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(BasicInformation(), &doc))
	assert.Equal(t, "http://json-schema.org/draft-04/schema#", doc["$schema"])
	assert.Equal(t, "object", doc["type"])
	assert.ElementsMatch(t, []any{"Identifier", "RegisteredOrganization", "Address"}, doc["required"])
}

func TestValidateBasicInformation(t *testing.T) {
	t.Run("mapped record validates and round trips", func(t *testing.T) {
		rec := &models.CompanyRecord{
			Identifier:       models.Identifier{IssuingAuthorityName: "Brønnøysundregistrene", Notation: "923609016"},
			Name:             "EQUINOR ASA",
			RegistrationDate: models.NewDate(time.Date(1995, 3, 12, 0, 0, 0, 0, time.UTC)),
			Addresses: &models.Addresses{
				RegisteredAddress: normalize.NewAddress([]string{"Forusbeen 50"}, "4035", "STAVANGER", "NO"),
			},
		}
		doc := normalize.BasicInformation("0192:923609016", "NO", rec)

		b, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, ValidateBasicInformation(b))

		var back models.BasicInformation
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, doc, back)
	})

	t.Run("missing required fields are reported", func(t *testing.T) {
		err := ValidateBasicInformation([]byte(`{"Identifier":"0192:1","RegisteredOrganization":{"legalName":"X"},"Address":{"postName":"Oslo"}}`))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, violationAt(t, verr, "/RegisteredOrganization"), "foundingDate")
		address := violationAt(t, verr, "/Address")
		assert.Contains(t, address, "thoroughfare")
		assert.NotContains(t, address, "postName")
	})

	t.Run("missing sections are reported at the root", func(t *testing.T) {
		err := ValidateBasicInformation([]byte(`{"Identifier":"0192:1"}`))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		root := violationAt(t, verr, "/")
		assert.Contains(t, root, "RegisteredOrganization")
		assert.Contains(t, root, "Address")
	})

	t.Run("wrong types are reported", func(t *testing.T) {
		err := ValidateBasicInformation([]byte(`{"Identifier":1,"RegisteredOrganization":[],"Address":{"thoroughfare":"a","postName":"b","postCode":"c","adminUnitL1":"d"}}`))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, violationAt(t, verr, "/Identifier"), "string")
		assert.Contains(t, violationAt(t, verr, "/RegisteredOrganization"), "object")
		assert.Contains(t, verr.Error(), "schema validation failed")
	})

	t.Run("not json", func(t *testing.T) {
		assert.Error(t, ValidateBasicInformation([]byte(`nope`)))
	})
}
