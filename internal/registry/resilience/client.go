// Package resilience wraps outbound registry calls in a per-client circuit breaker
// and a fixed absolute timeout.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nsg/internal/registry/metrics"
	"nsg/internal/registry/providers"
	"nsg/pkg/platform/circuit"
	"nsg/pkg/platform/sentinel"
)

const (
	// DefaultTimeout bounds every outbound call, connection and body read included.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 10 << 20
)

// Response is a fully read upstream response.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Duration time.Duration
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client executes requests against one logical upstream.
type Client struct {
	name             string
	httpClient       *http.Client
	timeout          time.Duration
	failureThreshold int
	openDuration     time.Duration
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer

	breaker *circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the absolute per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBreakerSettings configures the consecutive failure threshold and the open duration.
func WithBreakerSettings(failureThreshold int, openDuration time.Duration) Option {
	return func(c *Client) {
		c.failureThreshold = failureThreshold
		c.openDuration = openDuration
	}
}

// WithLogger sets the logger used for breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records call outcomes and breaker state.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client named after the upstream it talks to. The name labels
// the breaker, logs, metrics and spans.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:             name,
		httpClient:       &http.Client{},
		timeout:          DefaultTimeout,
		failureThreshold: 4,
		logger:           slog.Default(),
		tracer:           otel.Tracer("nsg/internal/registry/resilience"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.breaker = circuit.New(name,
		circuit.WithFailureThreshold(c.failureThreshold),
		circuit.WithOpenDuration(c.openDuration),
		circuit.WithOnStateChange(c.onStateChange),
	)
	c.metrics.SetBreakerState(name, int(circuit.StateClosed))
	return c
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return c.name
}

// BreakerState exposes the breaker position for probes and tests.
func (c *Client) BreakerState() circuit.State {
	return c.breaker.State()
}

// Do sends req and reads the whole body. Non-2xx responses are returned as a
// Response, not an error; only 408, 429 and 5xx count against the breaker.
// Errors are *providers.Error: Unavailable when the breaker rejects the call and
// NetworkError for transport failures and timeouts.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upstream.name", c.name),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		))
	defer span.End()

	ticket, err := c.breaker.Allow()
	if err != nil {
		c.metrics.IncrementUpstream(c.name, "rejected")
		span.SetAttributes(attribute.String("breaker.state", c.breaker.State().String()))
		span.SetStatus(codes.Error, "circuit open")
		return nil, providers.Unavailable(
			fmt.Sprintf("%s is temporarily unavailable", c.name),
			fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err))
	}
	span.SetAttributes(attribute.Bool("breaker.trial", ticket.Trial()))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.send(req.WithContext(callCtx))
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// caller went away; the upstream is not to blame
			ticket.Release()
			c.metrics.IncrementUpstream(c.name, "cancelled")
			span.SetStatus(codes.Error, "cancelled")
			return nil, providers.NetworkError(err)
		}
		ticket.Failure()
		c.metrics.IncrementUpstream(c.name, "error")
		c.metrics.ObserveUpstreamLatency(c.name, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, providers.NetworkError(err)
	}
	resp.Duration = duration

	if providers.IsTransientStatus(resp.Status) {
		ticket.Failure()
	} else {
		ticket.Success()
	}
	c.metrics.IncrementUpstream(c.name, statusClass(resp.Status))
	c.metrics.ObserveUpstreamLatency(c.name, duration)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if resp.Status >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.Status))
	}
	return resp, nil
}

func (c *Client) send(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}, nil
}

func (c *Client) onStateChange(name string, change circuit.StateChange) {
	c.metrics.SetBreakerState(name, int(change.To))
	level := slog.LevelWarn
	if change.Closed {
		level = slog.LevelInfo
	}
	c.logger.Log(context.Background(), level, "circuit breaker state changed",
		"client", name,
		"from", change.From.String(),
		"to", change.To.String(),
	)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
