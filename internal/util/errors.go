package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinels the gateway maps to responses: ErrNotFound becomes 404,
// ErrBackendUnavail and ErrTimeout become 503.
var (
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("timeout")
	ErrBackendUnavail = errors.New("backend unavailable")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// ConfigError reports a problem with one configuration field, or with the
// document as a whole when Field is empty. It always matches
// ErrConfigInvalid.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// NewConfigError creates a ConfigError without a cause.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a ConfigError wrapping cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// RouteNotFoundError is the route table's answer for a path no pattern
// matches. The gateway handler turns it into a 404.
type RouteNotFoundError struct {
	Path string
}

// NewRouteNotFoundError creates a RouteNotFoundError for path.
func NewRouteNotFoundError(path string) *RouteNotFoundError {
	return &RouteNotFoundError{Path: path}
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for path %q", e.Path)
}

func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// TimeoutError marks an outbound call that ran past its bound.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
	Cause     error
}

// NewTimeoutError creates a TimeoutError for operation.
func NewTimeoutError(operation string, duration time.Duration, cause error) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Cause: cause}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
