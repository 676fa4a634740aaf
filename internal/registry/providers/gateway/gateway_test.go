package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
)

const swedishResponse = `{
	"activity": [
		{"code": "6201", "inClassification": "http://data.europa.eu/ux2/nace2/nace2", "reference": "http://data.europa.eu/ux2/nace2/6201", "sequence": 1}
	],
	"identifier": {"issuingAuthorityName": "Bolagsverket", "notation": "5560000001"},
	"legalform": {"code": "SE_AB", "name": "Aktiebolag"},
	"legalStatus": {"code": "NONE", "name": "No extraordinary circumstances registered"},
	"name": "Exempel AB",
	"postalAddress": {"fullAddress": "Box 1;11122;Stockholm;Sweden"},
	"registeredAddress": {"fullAddress": "Storgatan 1;11122;Stockholm;Sweden"},
	"registrationDate": "1999-04-01"
}`

func decode(t *testing.T, raw string) *Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return &r
}

func TestMap(t *testing.T) {
	t.Run("maps a full response", func(t *testing.T) {
		rec, err := Map(models.JurisdictionSweden, "5560000001", decode(t, swedishResponse))
		require.NoError(t, err)

		assert.Equal(t, "Exempel AB", rec.Name)
		assert.Equal(t, "Bolagsverket", rec.Identifier.IssuingAuthorityName)
		assert.Equal(t, models.LegalFormCode("SE_AB"), rec.LegalForm.Code)
		assert.Equal(t, "Aktiebolag", rec.LegalForm.Type)
		assert.Equal(t, models.LegalStatusNoRegistered, rec.LegalStatus)
		assert.Equal(t, "1999-04-01", rec.RegistrationDate.String())
		require.NotNil(t, rec.Addresses)
		assert.Equal(t, "Storgatan 1;11122;Stockholm;Sweden", rec.Addresses.RegisteredAddress.FullAddress)
		assert.Equal(t, "Box 1;11122;Stockholm;Sweden", rec.Addresses.PostalAddress.FullAddress)
		assert.Len(t, rec.Activity, 1)
	})

	t.Run("prefixes bare legal form codes", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.LegalForm.Code = "hb"
		rec, err := Map(models.JurisdictionSweden, "5560000001", r)
		require.NoError(t, err)
		assert.Equal(t, models.LegalFormCode("SE_HB"), rec.LegalForm.Code)
	})

	t.Run("unknown legal form is a server error", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.LegalForm.Code = "SE_XYZ"
		_, err := Map(models.JurisdictionSweden, "5560000001", r)
		assert.Equal(t, providers.CategoryServerError, providers.GetCategory(err))
		assert.ErrorIs(t, err, models.ErrUnknownLegalForm)
	})

	t.Run("foreign prefix is rejected", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.LegalForm.Code = "NO_AS"
		_, err := Map(models.JurisdictionSweden, "5560000001", r)
		assert.Equal(t, providers.CategoryServerError, providers.GetCategory(err))
		assert.ErrorIs(t, err, models.ErrUnknownLegalForm)
	})

	t.Run("iceland codes are validated", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.LegalForm.Code = "ehf"
		rec, err := Map(models.JurisdictionIceland, "5902697199", r)
		require.NoError(t, err)
		assert.Equal(t, models.LegalFormCode("IS_EHF"), rec.LegalForm.Code)

		r.LegalForm.Code = "whatever"
		_, err = Map(models.JurisdictionIceland, "5902697199", r)
		assert.Equal(t, providers.CategoryServerError, providers.GetCategory(err))
		assert.ErrorIs(t, err, models.ErrUnknownLegalForm)
	})

	t.Run("some registered status", func(t *testing.T) {
		for _, code := range []string{"SOME", "some_registered"} {
			r := decode(t, swedishResponse)
			r.LegalStatus.Code = code
			rec, err := Map(models.JurisdictionSweden, "5560000001", r)
			require.NoError(t, err)
			assert.Equal(t, models.LegalStatusSomeRegistered, rec.LegalStatus, code)
		}
	})

	t.Run("missing identifier uses requested notation", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.Identifier.Notation = ""
		rec, err := Map(models.JurisdictionSweden, "5560000001", r)
		require.NoError(t, err)
		assert.Equal(t, "5560000001", rec.Identifier.Notation)
	})

	t.Run("missing name or date is permanent", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.Name = " "
		_, err := Map(models.JurisdictionSweden, "5560000001", r)
		assert.Equal(t, providers.CategoryUpstreamPermanent, providers.GetCategory(err))

		r = decode(t, swedishResponse)
		r.RegistrationDate = "yesterday"
		_, err = Map(models.JurisdictionSweden, "5560000001", r)
		assert.Equal(t, providers.CategoryUpstreamPermanent, providers.GetCategory(err))
	})

	t.Run("no addresses and activity cap", func(t *testing.T) {
		r := decode(t, swedishResponse)
		r.PostalAddress, r.RegisteredAddress = nil, &FullAddress{}
		r.Activity = make([]models.Activity, 5)
		rec, err := Map(models.JurisdictionSweden, "5560000001", r)
		require.NoError(t, err)
		assert.Nil(t, rec.Addresses)
		assert.Len(t, rec.Activity, 3)
	})
}

func TestExecute(t *testing.T) {
	var got Request
	status := http.StatusOK
	body := swedishResponse
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()
	client := resilience.New("sweden", resilience.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	newReq := func() *http.Request {
		req, err := NewJSONRequest(ctx, http.MethodPost, srv.URL, Request{Notation: "5560000001"})
		require.NoError(t, err)
		return req
	}

	t.Run("success", func(t *testing.T) {
		rec, err := Execute(ctx, client, newReq(), models.JurisdictionSweden, "5560000001")
		require.NoError(t, err)
		assert.Equal(t, "Exempel AB", rec.Name)
		assert.Equal(t, "5560000001", got.Notation)
		assert.Empty(t, got.Country)
	})

	t.Run("upstream error envelope is re-raised", func(t *testing.T) {
		status = http.StatusNotFound
		body = `{"type":"urn:bronnoysundregistrene:error:validation","instance":"not.found","status":404,"title":"Not found","detail":"Organisation does not exist","code":"NSG-404","source":"notation"}`
		defer func() { status, body = http.StatusOK, swedishResponse }()

		_, err := Execute(ctx, client, newReq(), models.JurisdictionSweden, "5560000001")

		var pe *providers.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, providers.CategoryNotFound, pe.Category)
		assert.Equal(t, "NSG-404", pe.Code)
		assert.Equal(t, "Organisation does not exist", pe.Detail)
		assert.Equal(t, models.JurisdictionSweden, pe.Jurisdiction)
	})

	t.Run("unparseable error body", func(t *testing.T) {
		status = http.StatusInternalServerError
		body = `<html>oops</html>`
		defer func() { status, body = http.StatusOK, swedishResponse }()

		_, err := Execute(ctx, client, newReq(), models.JurisdictionSweden, "5560000001")

		var pe *providers.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "Remote server error", pe.Title)
		assert.Equal(t, http.StatusInternalServerError, pe.Status)
		assert.True(t, providers.IsTransient(err))
	})

	t.Run("garbage success body", func(t *testing.T) {
		body = `[1,2`
		defer func() { body = swedishResponse }()

		_, err := Execute(ctx, client, newReq(), models.JurisdictionSweden, "5560000001")
		assert.Equal(t, providers.CategoryUpstreamPermanent, providers.GetCategory(err))
	})
}
