package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"nsg/internal/registry/models"
	"nsg/pkg/platform/httputil"
)

// Category defines the normalized failure taxonomy.
type Category string

const (
	// CategoryInvalidInput covers malformed identifiers and unsupported country codes.
	CategoryInvalidInput Category = "invalid_input"

	// CategoryNotFound covers entities that do not exist or have been deregistered.
	CategoryNotFound Category = "not_found"

	// CategoryUpstreamTransient covers network failures, timeouts, 5xx and an open breaker.
	CategoryUpstreamTransient Category = "upstream_transient"

	// CategoryUpstreamPermanent covers other 4xx answers and payloads we cannot read.
	CategoryUpstreamPermanent Category = "upstream_permanent"

	// CategoryNotImplemented marks a jurisdiction that is known but not supported.
	CategoryNotImplemented Category = "not_implemented"

	// CategoryServerError covers local faults such as unmapped legal form codes.
	CategoryServerError Category = "server_error"
)

// Stable error codes surfaced in the envelope.
const (
	CodeInvalidInput          = "invalid_input"
	CodeNotFound              = "not_found"
	CodeUnsupportedIdentifier = "unsupported_identifier"
	CodeUpstreamUnavailable   = "upstream_unavailable"
	CodeNetworkError          = "network_error"
	CodeUpstreamError         = "upstream_error"
	CodeNotImplemented        = "not_implemented"
	CodeServerError           = "server_error"
)

const (
	typeValidation = "urn:bronnoysundregistrene:error:validation"
	typeNetwork    = "urn:bronnoysundregistrene:error:network"
	typeUnknown    = "urn:bronnoysundregistrene:error:unknown"
	typeUpstream   = "urn:bronnoysundregistrene:error"
)

// Error is a classified failure carrying the fields of the caller-facing envelope.
type Error struct {
	Category     Category
	Jurisdiction models.Jurisdiction
	Code         string
	Type         string
	Instance     string
	Source       string
	Detail       string
	Status       int
	Title        string
	Err          error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Jurisdiction != "" {
		fmt.Fprintf(&b, "%s: ", e.Jurisdiction)
	}
	fmt.Fprintf(&b, "[%s] %s", e.Category, e.Title)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Envelope implements httputil.Problem. Server errors do not expose detail.
func (e *Error) Envelope() httputil.ErrorEnvelope {
	env := httputil.ErrorEnvelope{
		Code:     e.Code,
		Type:     e.Type,
		Instance: e.Instance,
		Source:   e.Source,
		Detail:   e.Detail,
		Status:   e.Status,
		Title:    e.Title,
	}
	if e.Category == CategoryServerError {
		env.Detail = ""
	}
	return env
}

// WithJurisdiction tags the error with the adapter that raised it.
func (e *Error) WithJurisdiction(j models.Jurisdiction) *Error {
	e.Jurisdiction = j
	return e
}

// InvalidInput reports a malformed request field.
func InvalidInput(source, detail string) *Error {
	return &Error{
		Category: CategoryInvalidInput,
		Code:     CodeInvalidInput,
		Type:     typeValidation,
		Instance: "invalid",
		Source:   source,
		Detail:   detail,
		Status:   http.StatusBadRequest,
		Title:    "Invalid input",
	}
}

// NotFound reports a missing or deregistered entity.
func NotFound(detail string) *Error {
	return &Error{
		Category: CategoryNotFound,
		Code:     CodeNotFound,
		Type:     typeValidation,
		Instance: "not.found",
		Source:   "notation",
		Detail:   detail,
		Status:   http.StatusNotFound,
		Title:    "Not found",
	}
}

// UnsupportedIdentifier reports an identifier scheme no adapter handles.
func UnsupportedIdentifier(detail string) *Error {
	e := NotFound(detail)
	e.Code = CodeUnsupportedIdentifier
	e.Source = "organizationNumber"
	e.Title = "Unsupported identifier"
	return e
}

// Unavailable reports a call rejected without reaching the upstream.
func Unavailable(detail string, err error) *Error {
	return &Error{
		Category: CategoryUpstreamTransient,
		Code:     CodeUpstreamUnavailable,
		Type:     typeNetwork,
		Instance: "upstream.unavailable",
		Detail:   detail,
		Status:   http.StatusServiceUnavailable,
		Title:    "Upstream unavailable",
		Err:      err,
	}
}

// NetworkError reports a connection failure or timeout.
func NetworkError(err error) *Error {
	return &Error{
		Category: CategoryUpstreamTransient,
		Code:     CodeNetworkError,
		Type:     typeNetwork,
		Instance: "network.error",
		Detail:   "Request to remote api failed",
		Status:   http.StatusBadGateway,
		Title:    "Network error",
		Err:      err,
	}
}

// UpstreamPermanent reports an upstream answer that cannot be used.
func UpstreamPermanent(detail string, err error) *Error {
	return &Error{
		Category: CategoryUpstreamPermanent,
		Code:     CodeUpstreamError,
		Type:     typeUpstream,
		Instance: "server.error",
		Detail:   detail,
		Status:   http.StatusBadGateway,
		Title:    "Upstream error",
		Err:      err,
	}
}

// NotImplemented reports a known jurisdiction without an adapter.
func NotImplemented(detail string) *Error {
	return &Error{
		Category: CategoryNotImplemented,
		Code:     CodeNotImplemented,
		Type:     typeUnknown,
		Instance: "not.implemented",
		Source:   "country",
		Detail:   detail,
		Status:   http.StatusNotImplemented,
		Title:    "Not implemented",
	}
}

// ServerError reports a local fault.
func ServerError(detail string, err error) *Error {
	return &Error{
		Category: CategoryServerError,
		Code:     CodeServerError,
		Type:     typeUnknown,
		Instance: "server.error",
		Detail:   detail,
		Status:   http.StatusInternalServerError,
		Title:    "Internal server error",
		Err:      err,
	}
}

// upstreamEnvelope is the error body returned by gateway style registries.
type upstreamEnvelope struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Code     string `json:"code"`
	Source   string `json:"source"`
}

// FromUpstream classifies a non-success response. A parseable error envelope is
// re-raised with its own fields; anything else becomes a generic remote server
// error carrying the original status.
func FromUpstream(status int, body []byte) *Error {
	var env upstreamEnvelope
	if err := json.Unmarshal(body, &env); err != nil || (env.Title == "" && env.Code == "" && env.Detail == "") {
		e := &Error{
			Category: CategoryForStatus(status),
			Code:     CodeUpstreamError,
			Type:     typeUnknown,
			Instance: "server.error",
			Detail:   "Could not process response from external api, " + statusText(status),
			Status:   status,
			Title:    "Remote server error",
		}
		if err != nil {
			e.Err = err
		}
		return e
	}
	if env.Status == 0 {
		env.Status = status
	}
	return &Error{
		Category: CategoryForStatus(env.Status),
		Code:     env.Code,
		Type:     env.Type,
		Instance: env.Instance,
		Source:   env.Source,
		Detail:   env.Detail,
		Status:   env.Status,
		Title:    env.Title,
	}
}

// CategoryForStatus maps an upstream HTTP status onto the taxonomy.
func CategoryForStatus(status int) Category {
	switch {
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CategoryInvalidInput
	case IsTransientStatus(status):
		return CategoryUpstreamTransient
	default:
		return CategoryUpstreamPermanent
	}
}

// IsTransientStatus reports statuses that count against the circuit breaker.
func IsTransientStatus(status int) bool {
	return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500
}

func statusText(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return fmt.Sprintf("status %d", status)
}

// GetCategory extracts the category from an error chain.
func GetCategory(err error) Category {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryServerError
}

// Tag records j on a classified error in the chain and returns err unchanged.
func Tag(err error, j models.Jurisdiction) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Jurisdiction == "" {
		pe.Jurisdiction = j
	}
	return err
}

// IsTransient reports whether err is an upstream transient failure.
func IsTransient(err error) bool {
	return GetCategory(err) == CategoryUpstreamTransient
}

// ErrDuplicateProvider is returned when a jurisdiction is registered twice.
var ErrDuplicateProvider = errors.New("provider already registered")
