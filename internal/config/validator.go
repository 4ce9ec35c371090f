package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/authgw/internal/util"
)

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// Is reports configuration validation failures as util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates gateway configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a gateway configuration.
func ValidateConfig(config *GatewayConfig) error {
	return NewValidator().Validate(config)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *GatewayConfig) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateAuthorizationURL(config)
	v.validateServices(config.Services)
	v.validateServer(&config.Server)
	v.validateTimeouts(config)
	v.validateObservability(&config.Observability)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateAuthorizationURL checks the authorization endpoint. It may only
// be omitted when every service disables authentication.
func (v *Validator) validateAuthorizationURL(config *GatewayConfig) {
	const path = "authorization_api_url"

	if config.AuthorizationAPIURL == "" {
		if config.RequiresAuthorizationAPI() {
			v.addError(path, "authorization_api_url is required when a service requires authentication")
		}
		return
	}

	if msg := checkHTTPURL(config.AuthorizationAPIURL); msg != "" {
		v.addError(path, msg)
	}
}

// validateServices validates every service route.
func (v *Validator) validateServices(services []ServiceRoute) {
	for i := range services {
		path := fmt.Sprintf("services[%d]", i)
		v.validateServicePath(&services[i], path)
		v.validateTargetService(&services[i], path)
		v.validateTargetPort(&services[i], path)
	}
}

// validateServicePath checks that the pattern compiles. An empty pattern
// is valid and matches every path.
func (v *Validator) validateServicePath(s *ServiceRoute, path string) {
	if _, err := regexp.Compile(s.Path); err != nil {
		v.addError(path+".path", fmt.Sprintf("invalid regular expression: %v", err))
	}
}

// validateTargetService checks that the backend address carries an
// http(s) scheme and nothing that would break host:port concatenation.
func (v *Validator) validateTargetService(s *ServiceRoute, path string) {
	field := path + ".target_service"

	if s.TargetService == "" {
		v.addError(field, "target_service is required")
		return
	}
	if msg := checkHTTPURL(s.TargetService); msg != "" {
		v.addError(field, msg)
		return
	}

	u, _ := url.Parse(s.TargetService)
	switch {
	case u.Port() != "":
		v.addError(field, "target_service must not contain a port, use target_port")
	case u.Path != "":
		v.addError(field, "target_service must not contain a path or trailing slash")
	case u.RawQuery != "" || u.Fragment != "":
		v.addError(field, "target_service must not contain a query or fragment")
	}
}

// validateTargetPort checks that the port is a number in range.
func (v *Validator) validateTargetPort(s *ServiceRoute, path string) {
	field := path + ".target_port"

	if s.TargetPort == "" {
		v.addError(field, "target_port is required")
		return
	}
	port, err := strconv.Atoi(s.TargetPort)
	if err != nil || port < 1 || port > 65535 {
		v.addError(field, fmt.Sprintf("target_port must be a number between 1 and 65535, got %q", s.TargetPort))
	}
}

// validateServer validates the listener settings.
func (v *Validator) validateServer(server *ServerConfig) {
	if server.Address != "" {
		if _, _, err := net.SplitHostPort(server.Address); err != nil {
			v.addError("server.address", fmt.Sprintf("invalid listen address: %v", err))
		}
	}
	if server.ShutdownTimeout < 0 {
		v.addError("server.shutdown_timeout", "shutdown_timeout must not be negative")
	}
}

// validateTimeouts rejects negative outbound timeouts.
func (v *Validator) validateTimeouts(config *GatewayConfig) {
	if config.Authorization.Timeout < 0 {
		v.addError("authorization.timeout", "timeout must not be negative")
	}
	if config.Forwarding.Timeout < 0 {
		v.addError("forwarding.timeout", "timeout must not be negative")
	}
}

// validateObservability validates metrics and tracing settings.
func (v *Validator) validateObservability(obs *ObservabilityConfig) {
	if obs.Logging.Format != "" && obs.Logging.Format != "json" && obs.Logging.Format != "console" {
		v.addError("observability.logging.format", "format must be json or console")
	}

	if obs.Metrics.Enabled {
		if obs.Metrics.Port < 1 || obs.Metrics.Port > 65535 {
			v.addError("observability.metrics.port", "port must be between 1 and 65535")
		}
		if !strings.HasPrefix(obs.Metrics.Path, "/") {
			v.addError("observability.metrics.path", "path must start with /")
		}
	}

	if obs.Tracing.SamplingRate < 0 || obs.Tracing.SamplingRate > 1 {
		v.addError("observability.tracing.sampling_rate", "sampling_rate must be between 0 and 1")
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: message,
	})
}

// checkHTTPURL returns a message describing why raw is not an absolute
// http or https URL, or "" when it is.
func checkHTTPURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("URL %q must start with http:// or https://", raw)
	}
	if u.Hostname() == "" {
		return fmt.Sprintf("URL %q has no host", raw)
	}
	return ""
}
