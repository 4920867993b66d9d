package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "helios"

// Collector registers and records all gateway metrics against a single
// Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tokensTotal     *prometheus.CounterVec

	admissionsTotal *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	fallbacksTotal  *prometheus.CounterVec
	providerErrors  *prometheus.CounterVec

	activeKeys prometheus.Gauge
}

// NewCollector creates a collector with its own registry. If registry is
// nil a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of analysis requests processed",
			},
			[]string{"provider", "model", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end analysis request duration in seconds",
				// Sized for inference latencies: sub-second to tens of seconds.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Total tokens processed, by direction",
			},
			[]string{"provider", "model", "direction"},
		),
		admissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admission_decisions_total",
				Help:      "Rate limiter admission decisions",
			},
			[]string{"decision"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Retry attempts against providers",
			},
			[]string{"provider"},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Fallbacks away from a failed provider",
			},
			[]string{"provider"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Provider call failures by error kind",
			},
			[]string{"provider", "kind"},
		),
		activeKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rate_limit_active_keys",
				Help:      "Number of client keys currently tracked by the rate limiter",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.tokensTotal,
		c.admissionsTotal,
		c.retriesTotal,
		c.fallbacksTotal,
		c.providerErrors,
		c.activeKeys,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRequest records a completed analysis request.
func (c *Collector) RecordRequest(provider, model, status string, duration time.Duration, inputTokens, outputTokens int) {
	c.requestsTotal.WithLabelValues(provider, model, status).Inc()
	c.requestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	if inputTokens > 0 {
		c.tokensTotal.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		c.tokensTotal.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
}

// RecordAdmission records a rate limiter decision.
func (c *Collector) RecordAdmission(allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	c.admissionsTotal.WithLabelValues(decision).Inc()
}

// RecordRetry records a retry attempt against a provider.
func (c *Collector) RecordRetry(provider string) {
	c.retriesTotal.WithLabelValues(provider).Inc()
}

// RecordFallback records a fallback away from a failed provider.
func (c *Collector) RecordFallback(provider string) {
	c.fallbacksTotal.WithLabelValues(provider).Inc()
}

// RecordProviderError records a provider call failure.
func (c *Collector) RecordProviderError(provider, kind string) {
	c.providerErrors.WithLabelValues(provider, kind).Inc()
}

// SetActiveKeys updates the tracked-key gauge.
func (c *Collector) SetActiveKeys(n int) {
	c.activeKeys.Set(float64(n))
}
