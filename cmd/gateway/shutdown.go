package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/observability"
)

// shutdownTimeout bounds the whole shutdown sequence.
const shutdownTimeout = 30 * time.Second

// runGateway runs the gateway and handles shutdown.
func runGateway(app *application, configPath string, logger observability.Logger) {
	ctx := context.Background()

	if err := app.gateway.Start(ctx); err != nil {
		fatalWithSync(logger, "failed to start gateway", observability.Error(err))
		return
	}

	startAdminServerIfEnabled(app, logger)

	restartCh := make(chan struct{})
	watcher := startConfigWatcher(app.config, configPath, restartCh, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case <-restartCh:
		logger.Info("configuration changed, shutting down to apply it")
	}

	shutdown(app, watcher, logger)
}

// startConfigWatcher starts the configuration watcher when enabled.
// Routes are immutable while running, so a valid change closes restartCh
// unless exit_on_change is disabled.
func startConfigWatcher(
	cfg *config.GatewayConfig,
	configPath string,
	restartCh chan struct{},
	logger observability.Logger,
) *config.Watcher {
	if !cfg.Watch.Enabled {
		return nil
	}

	var once sync.Once
	exitOnChange := cfg.Watch.ShouldExitOnChange()

	watcher, err := config.NewWatcher(configPath, func(*config.GatewayConfig) {
		if !exitOnChange {
			logger.Warn("configuration changed, restart the gateway to apply it")
			return
		}
		once.Do(func() { close(restartCh) })
	},
		config.WithLogger(logger),
		config.WithDebounceDelay(cfg.Watch.DebounceDelay.Duration()),
	)
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}

	return watcher
}

// shutdown stops every component in reverse start order.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop config watcher", observability.Error(err))
		}
	}

	if app.adminServer != nil {
		logger.Info("stopping admin server")
		if err := app.adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to stop admin server gracefully", observability.Error(err))
		}
	}

	if err := app.gateway.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop gateway gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("gateway stopped")
}
