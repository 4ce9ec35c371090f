package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/authgw/internal/observability"
)

// Listener server limits. No read or write deadline is set because
// request and response bodies are streamed through to the backend.
const (
	listenerReadHeaderTimeout = 10 * time.Second
	listenerIdleTimeout       = 120 * time.Second
	listenerMaxHeaderBytes    = 1 << 20 // 1MB
)

// Listener serves the gateway handler on one TCP address.
type Listener struct {
	address string
	server  *http.Server
	handler http.Handler
	logger  observability.Logger
	running atomic.Bool
	mu      sync.RWMutex
	bound   net.Addr
}

// ListenerOption is a functional option for configuring a listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger for the listener.
func WithListenerLogger(logger observability.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// NewListener creates a new listener for address.
func NewListener(address string, handler http.Handler, opts ...ListenerOption) *Listener {
	l := &Listener{
		address: address,
		handler: handler,
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Address returns the configured listen address.
func (l *Listener) Address() string {
	return l.address
}

// Addr returns the bound address, which differs from Address when the
// configured port is 0. It is nil until Start succeeds.
func (l *Listener) Addr() net.Addr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bound
}

// Start binds the address and serves in the background.
func (l *Listener) Start(ctx context.Context) error {
	if l.running.Load() {
		return ErrListenerRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.address, err)
	}

	l.mu.Lock()
	l.server = &http.Server{
		Handler:           l.handler,
		ReadHeaderTimeout: listenerReadHeaderTimeout,
		IdleTimeout:       listenerIdleTimeout,
		MaxHeaderBytes:    listenerMaxHeaderBytes,
	}
	l.bound = ln.Addr()
	l.mu.Unlock()

	l.running.Store(true)

	l.logger.Info("listener started",
		observability.String("address", ln.Addr().String()),
	)

	go l.serve(ln)

	return nil
}

// serve runs until the server is shut down.
func (l *Listener) serve(ln net.Listener) {
	if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.logger.Error("listener error",
			observability.String("address", l.address),
			observability.Error(err),
		)
	}
	l.running.Store(false)
}

// Stop shuts the server down, waiting for in-flight requests until ctx
// expires and then closing remaining connections.
func (l *Listener) Stop(ctx context.Context) error {
	if !l.running.Load() {
		return nil
	}

	l.logger.Info("stopping listener",
		observability.String("address", l.address),
	)

	if err := l.server.Shutdown(ctx); err != nil {
		if closeErr := l.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close listener: %w", closeErr)
		}
		return fmt.Errorf("failed to shutdown listener gracefully: %w", err)
	}

	l.running.Store(false)

	l.logger.Info("listener stopped",
		observability.String("address", l.address),
	)

	return nil
}

// IsRunning returns true if the listener is running.
func (l *Listener) IsRunning() bool {
	return l.running.Load()
}
