package main

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/vyrodovalexey/authgw/internal/authz"
	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/gateway"
	"github.com/vyrodovalexey/authgw/internal/health"
	"github.com/vyrodovalexey/authgw/internal/middleware"
	"github.com/vyrodovalexey/authgw/internal/observability"
	"github.com/vyrodovalexey/authgw/internal/proxy"
	"github.com/vyrodovalexey/authgw/internal/router"
)

// application holds all application components.
type application struct {
	config        *config.GatewayConfig
	gateway       *gateway.Gateway
	handler       http.Handler
	routes        *router.RouteTable
	authorizer    *authz.Client
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	healthChecker *health.Checker
	adminServer   *http.Server
}

// initApplication builds every component from cfg. Nothing is started.
func initApplication(cfg *config.GatewayConfig, logger observability.Logger) (*application, error) {
	metrics := observability.NewMetrics("gateway")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := initTracer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	otel.SetLogger(observability.NewLogrLogger(logger))

	routes, err := router.New(cfg.Services)
	if err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}

	authorizer, err := initAuthorizer(cfg, logger, metrics, tracer)
	if err != nil {
		return nil, err
	}

	forwarderMetrics := proxy.NewMetrics("gateway")
	forwarderMetrics.MustRegister(metrics.Registry())
	forwarder := proxy.NewForwarder(
		proxy.WithTimeout(cfg.Forwarding.Timeout.Duration()),
		proxy.WithPreserveQuery(cfg.Forwarding.PreserveQuery),
		proxy.WithLogger(logger),
		proxy.WithMetrics(forwarderMetrics),
		proxy.WithTracer(tracer.Tracer()),
	)

	handlerOpts := []gateway.HandlerOption{
		gateway.WithHandlerLogger(logger),
	}
	if authorizer != nil {
		handlerOpts = append(handlerOpts, gateway.WithAuthorizer(authorizer))
	}

	routeHandler, err := gateway.NewHandler(routes, forwarder, handlerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	mwMetrics := middleware.NewMetrics("gateway")
	mwMetrics.MustRegister(metrics.Registry())
	handler := buildMiddlewareChain(routeHandler, logger, metrics, mwMetrics, tracer)

	gw, err := gateway.New(cfg,
		gateway.WithLogger(logger),
		gateway.WithRouteHandler(handler),
		gateway.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Duration()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	healthMetrics := health.NewMetricsWithRegisterer("gateway", metrics.Registry())
	healthMetrics.Init()
	checker := health.NewChecker(version,
		health.WithLogger(logger),
		health.WithMetrics(healthMetrics),
	)
	checker.RegisterCheck(health.StateCheck("gateway", gw.IsRunning, health.WithCritical(true)))
	if authorizer != nil {
		if addr, err := health.DialAddress(authorizer.URL()); err == nil {
			checker.RegisterCheck(health.TCPHealthCheck("authorization_api", addr))
		}
	}

	return &application{
		config:        cfg,
		gateway:       gw,
		handler:       handler,
		routes:        routes,
		authorizer:    authorizer,
		metrics:       metrics,
		tracer:        tracer,
		healthChecker: checker,
	}, nil
}

// initAuthorizer creates the authorization client when any route needs it.
func initAuthorizer(
	cfg *config.GatewayConfig,
	logger observability.Logger,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
) (*authz.Client, error) {
	if !cfg.RequiresAuthorizationAPI() {
		logger.Info("no route requires authorization, authorization API disabled")
		return nil, nil
	}

	authzMetrics := authz.NewMetrics("gateway")
	authzMetrics.Init()
	authzMetrics.MustRegister(metrics.Registry())

	client, err := authz.NewClient(cfg.AuthorizationAPIURL,
		authz.WithTimeout(cfg.Authorization.Timeout.Duration()),
		authz.WithLogger(logger),
		authz.WithMetrics(authzMetrics),
		authz.WithTracer(tracer.Tracer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization client: %w", err)
	}
	return client, nil
}

// buildMiddlewareChain wraps the gateway handler. Recovery is outermost.
func buildMiddlewareChain(
	handler http.Handler,
	logger observability.Logger,
	metrics *observability.Metrics,
	mwMetrics *middleware.Metrics,
	tracer *observability.Tracer,
) http.Handler {
	return middleware.Chain(handler,
		middleware.Recovery(logger, mwMetrics),
		middleware.RequestID(),
		middleware.Logging(logger),
		observability.TracingMiddleware(tracer),
		observability.MetricsMiddleware(metrics),
	)
}
