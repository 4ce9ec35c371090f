package middleware

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for middleware operations.
type Metrics struct {
	panicsRecovered prometheus.Counter
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	return &Metrics{
		panicsRecovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "middleware",
				Name:      "panics_recovered_total",
				Help:      "Total number of panics recovered",
			},
		),
	}
}

// MustRegister registers the metrics with the given registry.
// AlreadyRegisteredError is ignored; any other error panics.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	if err := registry.Register(m.panicsRecovered); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
	}
}
