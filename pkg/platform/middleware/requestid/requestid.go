// Package requestid propagates the caller's x-request-id header into the request context.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"nsg/pkg/requestcontext"
)

// Header is the inbound and outbound request id header.
const Header = "x-request-id"

// Middleware reads the request id header, generating one when the caller did not
// send it, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromRequest returns the caller supplied request id, or fallback when absent.
func FromRequest(r *http.Request, fallback string) string {
	if id := strings.TrimSpace(r.Header.Get(Header)); id != "" {
		return id
	}
	return fallback
}
