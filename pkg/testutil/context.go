package testutil

import (
	"net/http"
	"time"

	"nsg/pkg/requestcontext"
)

// WithRequestContext stamps req the way the request id and request time
// middleware would.
func WithRequestContext(req *http.Request, requestID string, now time.Time) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithTime(ctx, now)
	return req.WithContext(ctx)
}
