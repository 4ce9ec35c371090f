package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/vyrodovalexey/authgw/internal/observability"
)

// DefaultCheckTimeout bounds a single readiness check.
const DefaultCheckTimeout = 2 * time.Second

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the service is degraded but operational.
	StatusDegraded Status = "degraded"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents an individual check result.
type Check struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker answers liveness, health and readiness checks for the admin
// server.
type Checker struct {
	version   string
	startTime time.Time
	checks    []*DependencyCheck
	timeout   time.Duration
	logger    observability.Logger
	metrics   *Metrics
	mu        sync.RWMutex
}

// Option is a functional option for configuring the checker.
type Option func(*Checker)

// WithLogger sets the logger for the checker.
func WithLogger(logger observability.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics for the checker.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Checker) {
		c.metrics = metrics
	}
}

// WithCheckTimeout sets the per-check timeout. Values <= 0 are ignored.
func WithCheckTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewChecker creates a new health checker.
func NewChecker(version string, opts ...Option) *Checker {
	c := &Checker{
		version:   version,
		startTime: time.Now(),
		timeout:   DefaultCheckTimeout,
		logger:    observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.metrics == nil {
		c.metrics = NewMetricsWithRegisterer("gateway", nil)
	}

	return c
}

// RegisterCheck adds a readiness check. Checks run in registration order.
func (c *Checker) RegisterCheck(check *DependencyCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Health returns the process health. It does not run dependency checks.
func (c *Checker) Health() HealthResponse {
	c.metrics.recordRequest("health")

	return HealthResponse{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered check. A failing critical check makes
// the result unhealthy; any other failure makes it degraded.
func (c *Checker) Readiness(ctx context.Context) ReadinessResponse {
	c.mu.RLock()
	checks := make([]*DependencyCheck, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	c.metrics.recordRequest("readiness")

	response := ReadinessResponse{
		Status:    StatusHealthy,
		Checks:    make(map[string]Check, len(checks)),
		Timestamp: time.Now(),
	}

	for _, check := range checks {
		result := c.run(ctx, check)
		response.Checks[check.Name()] = result

		switch {
		case result.Status == StatusUnhealthy:
			response.Status = StatusUnhealthy
		case result.Status == StatusDegraded && response.Status != StatusUnhealthy:
			response.Status = StatusDegraded
		}
	}

	c.metrics.setStatus("overall", response.Status != StatusUnhealthy)

	return response
}

// run executes one check under the checker timeout.
func (c *Checker) run(ctx context.Context, check *DependencyCheck) Check {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := check.Check(ctx)
	c.metrics.setStatus(check.Name(), err == nil)
	if err == nil {
		return Check{Status: StatusHealthy}
	}

	c.logger.Debug("readiness check failed",
		observability.String("check", check.Name()),
		observability.Error(err),
	)

	status := StatusDegraded
	if check.IsCritical() {
		status = StatusUnhealthy
	}
	return Check{Status: status, Message: err.Error()}
}

// HealthHandler returns an HTTP handler for the health endpoint.
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, c.Health())
	}
}

// ReadinessHandler returns an HTTP handler for the readiness endpoint.
// An unhealthy result is answered with 503.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Readiness(r.Context())

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, response)
	}
}

// LivenessHandler returns an HTTP handler for the liveness endpoint (simple ping).
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		c.metrics.recordRequest("liveness")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// RegisterRoutes mounts /health, /ready and /live on mux.
func (c *Checker) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", c.HealthHandler())
	mux.HandleFunc("/ready", c.ReadinessHandler())
	mux.HandleFunc("/live", c.LivenessHandler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
