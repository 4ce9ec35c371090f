package proxy

import (
	"errors"
	"fmt"

	"github.com/vyrodovalexey/authgw/internal/util"
)

// ErrForwardFailed indicates that a request could not be delivered to
// its backend or that no response was received.
var ErrForwardFailed = errors.New("forward request failed")

// Forward operations reported in ForwardError.Op.
const (
	OpBuild = "build"
	OpSend  = "send"
)

// ForwardError describes a failed forward.
type ForwardError struct {
	Op      string // Operation that failed
	Route   string // Route pattern if known
	Target  string // Backend URI if known
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ForwardError) Error() string {
	msg := fmt.Sprintf("forward error [%s]", e.Op)
	if e.Route != "" {
		msg += " route=" + e.Route
	}
	if e.Target != "" {
		msg += " target=" + e.Target
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ForwardError) Unwrap() error {
	return e.Cause
}

// Is matches ErrForwardFailed and util.ErrBackendUnavail.
func (e *ForwardError) Is(target error) bool {
	return target == ErrForwardFailed || target == util.ErrBackendUnavail
}

func newBuildError(route, message string, cause error) *ForwardError {
	return &ForwardError{Op: OpBuild, Route: route, Message: message, Cause: cause}
}

func newSendError(target string, cause error) *ForwardError {
	return &ForwardError{Op: OpSend, Target: target, Message: "backend request failed", Cause: cause}
}
