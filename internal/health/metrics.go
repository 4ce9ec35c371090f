package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the admin health endpoints.
type Metrics struct {
	checksTotal *prometheus.CounterVec
	checkStatus *prometheus.GaugeVec
}

// NewMetricsWithRegisterer creates health metrics registered with
// registerer. A nil registerer leaves them unregistered.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	factory := promauto.With(registerer)

	return &Metrics{
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "requests_total",
				Help:      "Health endpoint requests served, by endpoint",
			},
			[]string{"type"},
		),
		checkStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Last readiness check status (1=healthy, 0=unhealthy)",
			},
			[]string{"check"},
		),
	}
}

// Init pre-initializes the endpoint type labels.
func (m *Metrics) Init() {
	for _, kind := range []string{"health", "liveness", "readiness"} {
		m.checksTotal.WithLabelValues(kind)
	}
}

func (m *Metrics) recordRequest(kind string) {
	m.checksTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) setStatus(check string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1
	}
	m.checkStatus.WithLabelValues(check).Set(value)
}
