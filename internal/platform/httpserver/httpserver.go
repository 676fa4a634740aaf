package httpserver

import (
	"net/http"
	"time"
)

// sequentialUpstreamCalls is the most upstream calls one request makes back to
// back: the Norway main unit then sub-unit lookup, or the Sweden token fetch
// then the registry lookup.
const sequentialUpstreamCalls = 2

const responseMargin = 10 * time.Second

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler, upstreamTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      WriteTimeout(upstreamTimeout),
		IdleTimeout:       60 * time.Second,
	}
}

// WriteTimeout leaves room for every sequential upstream call of a request to
// run to its full timeout and still write the error envelope.
func WriteTimeout(upstreamTimeout time.Duration) time.Duration {
	return sequentialUpstreamCalls*upstreamTimeout + responseMargin
}
