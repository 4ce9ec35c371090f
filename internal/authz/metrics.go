package authz

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision labels.
const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
	decisionError = "error"
)

// Metrics holds Prometheus metrics for authorization calls.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// NewMetrics creates a new Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "requests_total",
			Help:      "Total number of authorization requests by decision",
		},
		[]string{"decision"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "request_duration_seconds",
			Help:      "Authorization request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"decision"},
	)

	m.registry.MustRegister(m.requestsTotal, m.requestDuration)

	return m
}

// Init pre-initializes every decision label so the series are exported
// before the first request.
func (m *Metrics) Init() {
	for _, decision := range []string{decisionAllow, decisionDeny, decisionError} {
		m.requestsTotal.WithLabelValues(decision)
		m.requestDuration.WithLabelValues(decision)
	}
}

// RecordRequest records one authorization call.
func (m *Metrics) RecordRequest(decision string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(decision).Inc()
	m.requestDuration.WithLabelValues(decision).Observe(duration.Seconds())
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegister registers the metrics with the given registry.
// AlreadyRegisteredError is ignored; any other error panics.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
