package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for company lookups and their upstream calls.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Lookup latency by jurisdiction and outcome category
	LookupLatency *prometheus.HistogramVec

	// Upstream calls by client and result class ("2xx", "4xx", "5xx", "error", "rejected")
	UpstreamRequests *prometheus.CounterVec

	UpstreamLatency *prometheus.HistogramVec

	// 0 closed, 1 open, 2 half open
	BreakerState *prometheus.GaugeVec

	// Token cache lookups by provider and result ("hit", "miss")
	TokenCache *prometheus.CounterVec
}

// New registers all registry metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nsg_lookup_duration_seconds",
			Help:    "Duration of company lookups by jurisdiction and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"jurisdiction", "outcome"}),

		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nsg_upstream_requests_total",
			Help: "Outbound registry calls by client and result class",
		}, []string{"client", "result"}),

		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nsg_upstream_request_duration_seconds",
			Help:    "Duration of outbound registry calls that reached the network",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"client"}),

		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nsg_circuit_breaker_state",
			Help: "Circuit breaker state per upstream client (0 closed, 1 open, 2 half open)",
		}, []string{"client"}),

		TokenCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nsg_token_cache_lookups_total",
			Help: "Bearer token cache lookups by provider and result",
		}, []string{"provider", "result"}),
	}
}

// ObserveLookup records a finished lookup.
func (m *Metrics) ObserveLookup(jurisdiction, outcome string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(jurisdiction, outcome).Observe(d.Seconds())
	}
}

// IncrementUpstream counts an outbound call result.
func (m *Metrics) IncrementUpstream(client, result string) {
	if m != nil {
		m.UpstreamRequests.WithLabelValues(client, result).Inc()
	}
}

// ObserveUpstreamLatency records the duration of a call that reached the network.
func (m *Metrics) ObserveUpstreamLatency(client string, d time.Duration) {
	if m != nil {
		m.UpstreamLatency.WithLabelValues(client).Observe(d.Seconds())
	}
}

// SetBreakerState records the numeric breaker state.
func (m *Metrics) SetBreakerState(client string, state int) {
	if m != nil {
		m.BreakerState.WithLabelValues(client).Set(float64(state))
	}
}

// IncrementTokenCache counts a token cache hit or miss.
func (m *Metrics) IncrementTokenCache(provider string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TokenCache.WithLabelValues(provider, result).Inc()
}
