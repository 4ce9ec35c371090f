package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/authgw/internal/util"
)

// Label values used when the handler did not report a route or outcome.
// Raw paths never become label values.
const (
	unmatchedRoute = "unmatched"
	unknownOutcome = "unknown"
)

// Metrics is the gateway's request-level instrumentation and the registry
// behind the admin /metrics endpoint. Component metrics (authorization
// client, forwarder, health) register into the same registry.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	buildInfo    *prometheus.GaugeVec
}

// NewMetrics creates the request metrics in a fresh registry together
// with the Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gateway"
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests by matched route, handler outcome and response status",
		}, []string{"method", "route", "outcome", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from receiving a request to finishing its response",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "outcome"}),
		responseSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "Response body bytes written to clients",
			Buckets:   prometheus.ExponentialBuckets(64, 8, 8),
		}, []string{"route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_requests",
			Help:      "Requests currently being served",
		}),
		buildInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information for the gateway",
		}, []string{"version", "commit", "build_time"}),
	}

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "start_time_seconds",
		Help:      "Start time of the gateway in unix seconds",
	}).SetToCurrentTime()

	return m
}

// RecordRequest records one finished request. route and outcome are what
// the gateway handler reported; empty values get the fallback labels.
func (m *Metrics) RecordRequest(
	method, route, outcome string,
	status int,
	elapsed time.Duration,
	size int,
) {
	if route == "" {
		route = unmatchedRoute
	}
	if outcome == "" {
		outcome = unknownOutcome
	}

	m.requests.WithLabelValues(method, route, outcome, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, outcome).Observe(elapsed.Seconds())
	m.responseSize.WithLabelValues(route).Observe(float64(size))
}

// SetBuildInfo publishes the running build.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the registry component metrics register into.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsMiddleware records every request once the inner handler has
// returned, labelled with the route and outcome the handler reported
// through util.RouteHolder.
func MetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			r, holder := util.EnsureRouteHolder(r)
			rw := util.NewStatusCapturingResponseWriter(w)

			metrics.inFlight.Inc()
			defer metrics.inFlight.Dec()

			next.ServeHTTP(rw, r)

			metrics.RecordRequest(r.Method, holder.Route, holder.Outcome,
				rw.StatusCode, time.Since(start), rw.Size)
		})
	}
}
