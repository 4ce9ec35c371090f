package observability

import "context"

type logContextKey int

const (
	requestIDKey logContextKey = iota
	traceIDKey
	spanIDKey
)

// logFieldNames maps each context key to the log field it becomes.
var logFieldNames = [...]string{
	requestIDKey: "request_id",
	traceIDKey:   "trace_id",
	spanIDKey:    "span_id",
}

// contextFields returns a field for every non-empty ID stored in ctx.
func contextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field
	for key, name := range logFieldNames {
		if v := contextString(ctx, logContextKey(key)); v != "" {
			fields = append(fields, String(name, v))
		}
	}
	return fields
}

func contextString(ctx context.Context, key logContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID stores the request ID logged with every entry.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return contextString(ctx, requestIDKey)
}

// ContextWithTraceID stores the server span's trace ID.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace ID, or "".
func TraceIDFromContext(ctx context.Context) string {
	return contextString(ctx, traceIDKey)
}

// ContextWithSpanID stores the server span's span ID.
func ContextWithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

// SpanIDFromContext returns the span ID, or "".
func SpanIDFromContext(ctx context.Context) string {
	return contextString(ctx, spanIDKey)
}
