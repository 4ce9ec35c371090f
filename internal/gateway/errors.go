package gateway

import "errors"

// Sentinel errors for gateway operations.
var (
	// ErrGatewayNotStopped indicates that the gateway is not in
	// stopped state when a start operation is attempted.
	ErrGatewayNotStopped = errors.New("gateway is not in stopped state")

	// ErrGatewayNotRunning indicates that the gateway is not
	// running when a stop operation is attempted.
	ErrGatewayNotRunning = errors.New("gateway is not running")

	// ErrNilConfig indicates that a nil configuration was provided.
	ErrNilConfig = errors.New("configuration is required")

	// ErrNilRouteTable indicates that a handler was built without routes.
	ErrNilRouteTable = errors.New("route table is required")

	// ErrNilForwarder indicates that a handler was built without a forwarder.
	ErrNilForwarder = errors.New("forwarder is required")

	// ErrNoAuthorizer indicates that a route requires authorization but
	// no authorizer was provided.
	ErrNoAuthorizer = errors.New("a route requires authorization but no authorizer is configured")

	// ErrListenerRunning indicates that Start was called twice.
	ErrListenerRunning = errors.New("listener is already running")
)
