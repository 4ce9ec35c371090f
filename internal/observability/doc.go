// Package observability provides logging, metrics, and tracing
// for the gateway.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("request forwarded",
//	    observability.String("target", "http://127.0.0.1:9001/api/items"),
//	    observability.Int("status", 200),
//	)
//
// NewLogrLogger bridges the same core to logr for libraries such as
// OpenTelemetry that log through it.
//
// # Metrics
//
//	metrics := observability.NewMetrics("gateway")
//	handler := observability.MetricsMiddleware(metrics)(next)
//	adminMux.Handle("/metrics", metrics.Handler())
//
// # Tracing
//
// Tracing is off unless enabled in configuration. When enabled spans are
// exported over OTLP/gRPC:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName:  "authgw",
//	    OTLPEndpoint: "otel-collector:4317",
//	    SamplingRate: 1.0,
//	    Enabled:      true,
//	})
//	defer tracer.Shutdown(ctx)
package observability
