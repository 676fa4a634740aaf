// Package requesttime stamps each request with a single "now" so envelopes and
// logs produced while serving it agree on the timestamp.
package requesttime

import (
	"net/http"
	"time"

	"nsg/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
