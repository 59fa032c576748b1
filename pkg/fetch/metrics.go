package fetch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded in the outcome label.
const (
	OutcomeSuccess = "success"
	OutcomeProblem = "problem"
	OutcomeNetwork = "network"
)

// MetricsConfig configures request metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "domkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "fetch").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures request metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "domkit",
		Subsystem: "fetch",
		Buckets:   prometheus.DefBuckets,
	}
}

// metrics holds the request collectors.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// newMetrics registers the collectors on reg. Collectors already registered
// by another Client on the same registry are shared.
func newMetrics(reg prometheus.Registerer, config MetricsConfig) *metrics {
	return &metrics{
		requestsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests by method and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "outcome"})),

		requestDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request duration in seconds, including failed requests",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}
