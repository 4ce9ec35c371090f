package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress   = "0.0.0.0:8080"
	DefaultMetricsPort     = 9090
	DefaultMetricsPath     = "/metrics"
	DefaultServiceName     = "authgw"
	DefaultShutdownTimeout = Duration(30 * time.Second)
	DefaultDebounceDelay   = Duration(100 * time.Millisecond)
)

// GatewayConfig is the root configuration document.
//
// Services are kept in declaration order; the first service whose path
// pattern matches a request wins.
type GatewayConfig struct {
	AuthorizationAPIURL string              `yaml:"authorization_api_url" toml:"authorization_api_url"`
	Services            []ServiceRoute      `yaml:"services" toml:"services"`
	Server              ServerConfig        `yaml:"server,omitempty" toml:"server,omitempty"`
	Authorization       AuthorizationConfig `yaml:"authorization,omitempty" toml:"authorization,omitempty"`
	Forwarding          ForwardingConfig    `yaml:"forwarding,omitempty" toml:"forwarding,omitempty"`
	Observability       ObservabilityConfig `yaml:"observability,omitempty" toml:"observability,omitempty"`
	Watch               WatchConfig         `yaml:"watch,omitempty" toml:"watch,omitempty"`
}

// ServiceRoute maps a path pattern to a backend service.
type ServiceRoute struct {
	// Path is a regular expression searched for anywhere in the request path.
	Path string `yaml:"path" toml:"path"`

	// TargetService is the backend base address including its scheme,
	// e.g. "http://127.0.0.1".
	TargetService string `yaml:"target_service" toml:"target_service"`

	// TargetPort is the backend port as a numeric string.
	TargetPort string `yaml:"target_port" toml:"target_port"`

	// AuthenticationRequired defaults to true when omitted.
	AuthenticationRequired *bool `yaml:"authentication_required,omitempty" toml:"authentication_required,omitempty"`
}

// RequiresAuthentication reports whether the route must pass the
// authorization check. Only an explicit false disables it.
func (s ServiceRoute) RequiresAuthentication() bool {
	return s.AuthenticationRequired == nil || *s.AuthenticationRequired
}

// ServerConfig configures the inbound listener.
type ServerConfig struct {
	Address         string   `yaml:"address,omitempty" toml:"address,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout,omitempty" toml:"shutdown_timeout,omitempty"`
}

// AuthorizationConfig tunes the call to the authorization endpoint.
type AuthorizationConfig struct {
	// Timeout bounds the authorization call. Zero means no timeout.
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// ForwardingConfig tunes the call to backend services.
type ForwardingConfig struct {
	// Timeout bounds the backend call. Zero means no timeout.
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`

	// PreserveQuery appends the inbound query string to the backend URI.
	PreserveQuery bool `yaml:"preserve_query,omitempty" toml:"preserve_query,omitempty"`
}

// ObservabilityConfig groups logging, metrics and tracing settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging,omitempty" toml:"logging,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	Tracing TracingConfig `yaml:"tracing,omitempty" toml:"tracing,omitempty"`
}

// LoggingConfig overrides the logger settings given on the command line.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
}

// MetricsConfig configures the admin server exposing Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Port    int    `yaml:"port,omitempty" toml:"port,omitempty"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" toml:"enabled"`
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty" toml:"otlp_endpoint,omitempty"`
	SamplingRate float64 `yaml:"sampling_rate,omitempty" toml:"sampling_rate,omitempty"`
	ServiceName  string  `yaml:"service_name,omitempty" toml:"service_name,omitempty"`
}

// WatchConfig configures the configuration file watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// ExitOnChange stops the process after a valid change so that a
	// supervisor restarts it with the new route table. Defaults to true.
	ExitOnChange *bool `yaml:"exit_on_change,omitempty" toml:"exit_on_change,omitempty"`

	DebounceDelay Duration `yaml:"debounce_delay,omitempty" toml:"debounce_delay,omitempty"`
}

// ShouldExitOnChange reports whether a change should stop the process.
func (w WatchConfig) ShouldExitOnChange() bool {
	return w.ExitOnChange == nil || *w.ExitOnChange
}

// DefaultConfig returns an empty configuration with defaults applied.
func DefaultConfig() *GatewayConfig {
	cfg := &GatewayConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued optional settings.
func (c *GatewayConfig) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultListenAddress
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Observability.Metrics.Port == 0 {
		c.Observability.Metrics.Port = DefaultMetricsPort
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = DefaultMetricsPath
	}
	if c.Observability.Tracing.ServiceName == "" {
		c.Observability.Tracing.ServiceName = DefaultServiceName
	}
	if c.Observability.Tracing.Enabled && c.Observability.Tracing.SamplingRate == 0 {
		c.Observability.Tracing.SamplingRate = 1.0
	}
	if c.Watch.DebounceDelay == 0 {
		c.Watch.DebounceDelay = DefaultDebounceDelay
	}
}

// RequiresAuthorizationAPI reports whether any route needs the
// authorization endpoint.
func (c *GatewayConfig) RequiresAuthorizationAPI() bool {
	for _, s := range c.Services {
		if s.RequiresAuthentication() {
			return true
		}
	}
	return false
}
