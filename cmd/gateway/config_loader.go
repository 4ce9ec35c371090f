package main

import (
	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/observability"
)

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.GatewayConfig {
	logger.Info("starting authgw",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fatalWithSync(logger, "failed to load configuration", observability.Error(err))
		return nil
	}

	if err := config.ValidateConfig(cfg); err != nil {
		fatalWithSync(logger, "invalid configuration", observability.Error(err))
		return nil
	}

	authRoutes := 0
	for _, s := range cfg.Services {
		if s.RequiresAuthentication() {
			authRoutes++
		}
	}

	logger.Info("configuration loaded",
		observability.String("address", cfg.Server.Address),
		observability.Int("routes", len(cfg.Services)),
		observability.Int("authenticated_routes", authRoutes),
		observability.String("authorization_api_url", cfg.AuthorizationAPIURL),
	)

	return cfg
}

// mergeLogConfig layers the file's logging settings over the flags.
// It reports whether anything differs from the flags.
func mergeLogConfig(flags cliFlags, cfg *config.GatewayConfig) (observability.LogConfig, bool) {
	logCfg := observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	}
	if cfg == nil {
		return logCfg, false
	}

	file := cfg.Observability.Logging
	changed := false
	if file.Level != "" && file.Level != logCfg.Level {
		logCfg.Level = file.Level
		changed = true
	}
	if file.Format != "" && file.Format != logCfg.Format {
		logCfg.Format = file.Format
		changed = true
	}
	if file.Output != "" {
		logCfg.Output = file.Output
		changed = true
	}
	return logCfg, changed
}

// applyLoggingOverrides rebuilds the logger when the configuration file
// overrides the command line logging settings.
func applyLoggingOverrides(
	flags cliFlags,
	cfg *config.GatewayConfig,
	logger observability.Logger,
) observability.Logger {
	logCfg, changed := mergeLogConfig(flags, cfg)
	if !changed {
		return logger
	}

	replacement, err := observability.NewLogger(logCfg)
	if err != nil {
		logger.Warn("ignoring logging settings from configuration", observability.Error(err))
		return logger
	}

	_ = logger.Sync()
	replacement.Debug("logger reconfigured from configuration file",
		observability.String("level", logCfg.Level),
		observability.String("format", logCfg.Format),
	)
	return replacement
}

// initTracer initializes the tracer.
func initTracer(cfg *config.GatewayConfig) (*observability.Tracer, error) {
	tracing := cfg.Observability.Tracing

	serviceName := tracing.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}

	return observability.NewTracer(observability.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   tracing.OTLPEndpoint,
		SamplingRate:   tracing.SamplingRate,
		Enabled:        tracing.Enabled,
	})
}
