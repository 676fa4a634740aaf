// Package metadata records who is calling: the client address and user agent
// are stamped on the context for access logs.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Client describes the caller of a request.
type Client struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

// ClientMetadata stores the caller's Client on the request context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Client{IP: ClientIPFromRequest(r), UserAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
	})
}

// WithClient injects c, for tests that bypass the middleware.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// FromContext returns the caller, or the zero Client outside a request.
func FromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

func GetClientIP(ctx context.Context) string {
	return FromContext(ctx).IP
}

func GetUserAgent(ctx context.Context) string {
	return FromContext(ctx).UserAgent
}

// ClientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote address.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
