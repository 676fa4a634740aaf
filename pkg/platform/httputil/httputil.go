package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrorEnvelope is the structured error document returned to callers.
type ErrorEnvelope struct {
	Code      string    `json:"code"`
	Type      string    `json:"type"`
	Instance  string    `json:"instance"`
	Source    string    `json:"source"`
	Detail    string    `json:"detail,omitempty"`
	Status    int       `json:"status"`
	Title     string    `json:"title"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

// Problem is implemented by errors that know how to describe themselves to callers.
type Problem interface {
	error
	Envelope() ErrorEnvelope
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as an ErrorEnvelope. Errors that are not a Problem are
// reported as an internal error without detail.
func WriteError(w http.ResponseWriter, err error, requestID string, now time.Time) {
	env := EnvelopeFor(err)
	env.RequestID = requestID
	env.Timestamp = now.UTC()
	WriteJSON(w, env.Status, env)
}

// EnvelopeFor extracts the envelope of err, defaulting to an internal error.
func EnvelopeFor(err error) ErrorEnvelope {
	var p Problem
	if errors.As(err, &p) {
		env := p.Envelope()
		if env.Status < 400 || env.Status > 599 {
			env.Status = http.StatusInternalServerError
		}
		return env
	}
	return ErrorEnvelope{
		Code:     "server_error",
		Type:     "urn:bronnoysundregistrene:error:unknown",
		Instance: "server.error",
		Status:   http.StatusInternalServerError,
		Title:    "Internal server error",
	}
}
