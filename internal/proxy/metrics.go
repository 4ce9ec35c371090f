package proxy

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Error reasons.
const (
	reasonBuild      = "build"
	reasonTimeout    = "timeout"
	reasonConnection = "connection_error"
)

// Metrics holds Prometheus metrics for forwarded requests.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
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
			Subsystem: "forward",
			Name:      "requests_total",
			Help:      "Total number of backend responses by route and status class",
		},
		[]string{"route", "status_class"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "errors_total",
			Help:      "Total number of failed forwards by route and reason",
		},
		[]string{"route", "reason"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "duration_seconds",
			Help:      "Time until the backend response headers arrived, in seconds",
			Buckets: []float64{
				.001, .005, .01, .025,
				.05, .1, .25, .5,
				1, 2.5, 5, 10,
			},
		},
		[]string{"route"},
	)

	m.registry.MustRegister(m.requestsTotal, m.errorsTotal, m.requestDuration)

	return m
}

// RecordResponse records a backend response.
func (m *Metrics) RecordResponse(route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordError records a failed forward.
func (m *Metrics) RecordError(route, reason string) {
	m.errorsTotal.WithLabelValues(route, reason).Inc()
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegister registers the metrics with the given registry.
// AlreadyRegisteredError is ignored; any other error panics.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	for _, c := range []prometheus.Collector{m.requestsTotal, m.errorsTotal, m.requestDuration} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

// statusClass maps 404 to "4xx".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
