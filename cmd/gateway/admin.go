package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vyrodovalexey/authgw/internal/health"
	"github.com/vyrodovalexey/authgw/internal/observability"
)

// createAdminServer creates the server exposing metrics and health endpoints.
func createAdminServer(
	port int,
	path string,
	metrics *observability.Metrics,
	checker *health.Checker,
) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	checker.RegisterRoutes(mux)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// runAdminServer runs the admin server until it is shut down.
func runAdminServer(server *http.Server, logger observability.Logger) {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("admin server error", observability.Error(err))
	}
}

// startAdminServerIfEnabled starts the admin server if metrics are enabled.
func startAdminServerIfEnabled(app *application, logger observability.Logger) {
	metricsCfg := app.config.Observability.Metrics
	if !metricsCfg.Enabled {
		return
	}

	app.adminServer = createAdminServer(metricsCfg.Port, metricsCfg.Path, app.metrics, app.healthChecker)

	logger.Info("starting admin server",
		observability.String("address", app.adminServer.Addr),
		observability.String("metrics_path", metricsCfg.Path),
	)

	go runAdminServer(app.adminServer, logger)
}
