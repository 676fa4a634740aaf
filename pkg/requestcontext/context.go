// Package requestcontext carries request-scoped values (the request id and the
// request's "now") on a context, so code below the HTTP layer can read them
// without importing net/http.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	requestIDKey key = iota
	requestTimeKey
)

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the time the request started. Outside a request (CLI runs,
// probes) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
