package cli

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsg/internal/platform/config"
)

const brreg = `{
	"organisasjonsnummer": "923609016",
	"navn": "EQUINOR ASA",
	"organisasjonsform": {"kode": "ASA", "beskrivelse": "Allmennaksjeselskap"},
	"registreringsdatoEnhetsregisteret": "1995-03-12",
	"forretningsadresse": {"landkode": "NO", "postnummer": "4035", "poststed": "STAVANGER", "adresse": ["Forusbeen 50"]}
}`

func run(t *testing.T, cfg config.Config, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(func() (config.Config, error) { return cfg, nil })
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeNorway(t *testing.T) config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/enheter/923609016" {
			_, _ = io.WriteString(w, brreg)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.Norway.BaseURL = srv.URL
	return cfg
}

func TestLookup(t *testing.T) {
	cfg := fakeNorway(t)

	out, _, err := run(t, cfg, "lookup", "--country", "NO", "923 609 016")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "EQUINOR ASA"`)
	assert.Contains(t, out, `"code": "NO_ASA"`)
}

func TestLookupNotFound(t *testing.T) {
	cfg := fakeNorway(t)

	_, errOut, err := run(t, cfg, "lookup", "-c", "NO", "999999999")
	require.Error(t, err)
	assert.Contains(t, errOut, `"code": "not_found"`)
}

func TestLookupRequiresCountry(t *testing.T) {
	_, _, err := run(t, config.Default(), "lookup", "923609016")
	assert.ErrorContains(t, err, "country")
}

func TestBasic(t *testing.T) {
	cfg := fakeNorway(t)

	out, _, err := run(t, cfg, "basic", "0192:923609016")
	require.NoError(t, err)
	assert.Contains(t, out, `"Identifier": "0192:923609016"`)
	assert.Contains(t, out, `"jurisdiction": "NOR"`)
}

func TestConfigRedactsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Sweden.ClientSecret = "hunter2"

	out, _, err := run(t, cfg, "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "timeout: 30s")
}

func TestConfigLoadFailure(t *testing.T) {
	cmd := newRootCmd(func() (config.Config, error) { return config.Config{}, errors.New("bad env") })
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"config"})
	assert.ErrorContains(t, cmd.Execute(), "bad env")
}
