// Package testutil holds helpers shared by handler and end-to-end tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsg/pkg/platform/httputil"
)

// NewJSONRequest builds a request with a JSON body. Strings and byte slices are
// sent as is, so malformed payloads can be tested; anything else is marshaled.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "marshal request body")
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoRequest serves req on handler and returns the recorded response.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON decodes the recorded body into a T.
func DecodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "decode response: %s", rr.Body.String())
	return v
}

func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code: %s", rr.Body.String())
}

// AssertEnvelope checks the status and that the body is an error envelope with
// the same status and the expected code. The envelope is returned for further
// assertions.
func AssertEnvelope(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) httputil.ErrorEnvelope {
	t.Helper()
	AssertStatus(t, rr, status)
	env := DecodeJSON[httputil.ErrorEnvelope](t, rr)
	assert.Equal(t, status, env.Status, "envelope status")
	assert.Equal(t, code, env.Code, "envelope code")
	return env
}
