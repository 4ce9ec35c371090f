package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/observability"
)

// State represents the gateway state.
type State int32

const (
	// StateStopped indicates the gateway is stopped.
	StateStopped State = iota
	// StateStarting indicates the gateway is starting.
	StateStarting
	// StateRunning indicates the gateway is running.
	StateRunning
	// StateStopping indicates the gateway is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Gateway owns the gin engine and the inbound listener.
type Gateway struct {
	config          *config.GatewayConfig
	logger          observability.Logger
	engine          *gin.Engine
	listener        *Listener
	state           atomic.Int32
	startTime       atomic.Int64
	routeHandler    http.Handler
	shutdownTimeout time.Duration
}

// Option is a functional option for configuring the gateway.
type Option func(*Gateway)

// WithLogger sets the logger for the gateway.
func WithLogger(logger observability.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithShutdownTimeout sets the shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.shutdownTimeout = timeout
	}
}

// WithRouteHandler sets the handler that serves every request.
func WithRouteHandler(handler http.Handler) Option {
	return func(g *Gateway) {
		g.routeHandler = handler
	}
}

// New creates a new Gateway instance.
func New(cfg *config.GatewayConfig, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	g := &Gateway{
		config:          cfg,
		logger:          observability.NopLogger(),
		shutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
	}
	if g.shutdownTimeout <= 0 {
		g.shutdownTimeout = config.DefaultShutdownTimeout.Duration()
	}

	for _, opt := range opts {
		opt(g)
	}

	g.state.Store(int32(StateStopped))

	return g, nil
}

// Start builds the engine and starts listening.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrGatewayNotStopped
	}

	address := g.config.Server.Address
	if address == "" {
		address = config.DefaultListenAddress
	}

	g.logger.Info("starting gateway",
		observability.String("address", address),
		observability.Int("routes", len(g.config.Services)),
	)

	gin.SetMode(gin.ReleaseMode)
	g.engine = gin.New()
	g.setupRoutes()

	g.listener = NewListener(address, g.engine, WithListenerLogger(g.logger))
	if err := g.listener.Start(ctx); err != nil {
		g.state.Store(int32(StateStopped))
		return fmt.Errorf("failed to start listener: %w", err)
	}

	g.startTime.Store(time.Now().UnixNano())
	g.state.Store(int32(StateRunning))

	g.logger.Info("gateway started",
		observability.String("address", g.listener.Addr().String()),
	)

	return nil
}

// Stop stops the gateway gracefully. Without a deadline on ctx the
// configured shutdown timeout applies.
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return ErrGatewayNotRunning
	}

	g.logger.Info("stopping gateway")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.shutdownTimeout)
		defer cancel()
	}

	err := g.listener.Stop(ctx)
	if err != nil {
		g.logger.Error("failed to stop listener", observability.Error(err))
	}

	g.state.Store(int32(StateStopped))

	g.logger.Info("gateway stopped")

	return err
}

// setupRoutes registers the health check for every method and sends
// everything else to the route handler through NoRoute. The engine
// matches on the raw path and never redirects or cleans it, so the
// handler sees exactly what the client sent. Panics are recovered by the
// handler's own middleware chain.
func (g *Gateway) setupRoutes() {
	if g.routeHandler == nil {
		return
	}

	g.engine.RedirectTrailingSlash = false
	g.engine.RedirectFixedPath = false
	g.engine.HandleMethodNotAllowed = false
	g.engine.UseRawPath = true
	g.engine.UnescapePathValues = false
	g.engine.RemoveExtraSlash = false

	handler := gin.WrapH(g.routeHandler)
	g.engine.Any(HealthCheckPath, handler)
	g.engine.NoRoute(handler)
}

// State returns the current gateway state.
func (g *Gateway) State() State {
	return State(g.state.Load())
}

// IsRunning returns true if the gateway is running.
func (g *Gateway) IsRunning() bool {
	return g.State() == StateRunning
}

// Uptime returns the time since the last successful start.
func (g *Gateway) Uptime() time.Duration {
	started := g.startTime.Load()
	if started == 0 {
		return 0
	}
	return time.Since(time.Unix(0, started))
}

// Addr returns the bound listener address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Engine returns the gin engine.
func (g *Gateway) Engine() *gin.Engine {
	return g.engine
}
