package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/authgw/internal/util"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return &Tracer{provider: provider, tracer: provider.Tracer("authgw-test")}, recorder
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{ServiceName: "authgw", Enabled: false})

	require.NoError(t, err)
	require.NotNil(t, tracer)
	assert.Nil(t, tracer.provider)
	assert.NotNil(t, tracer.Tracer())
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     float64
		contains string
	}{
		{name: "always", rate: 1.0, contains: "AlwaysOnSampler"},
		{name: "above one", rate: 2.5, contains: "AlwaysOnSampler"},
		{name: "never", rate: 0, contains: "AlwaysOffSampler"},
		{name: "negative", rate: -1, contains: "AlwaysOffSampler"},
		{name: "ratio", rate: 0.25, contains: "TraceIDRatioBased"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, sampler(tt.rate).Description(), tt.contains)
		})
	}
}

func TestExporterOptions(t *testing.T) {
	t.Parallel()

	opts := exporterOptions(TracerConfig{
		ServiceName:    "authgw",
		ServiceVersion: "1.2.3",
		OTLPEndpoint:   "localhost:4317",
	})

	assert.Len(t, opts, 6)
}

func TestTracer_Tracer(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)

	ctx, span := tracer.Tracer().Start(context.Background(), "unit", trace.WithSpanKind(trace.SpanKindInternal))
	span.End()

	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "unit", recorder.Ended()[0].Name())
}

func TestTracingMiddleware_RecordsServerSpan(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)

	var traceID, spanID string
	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceIDFromContext(r.Context())
		spanID = SpanIDFromContext(r.Context())
		util.SetRoute(r.Context(), "^/api/.*", "http://127.0.0.1:9001")
		util.SetOutcome(r.Context(), "forwarded")
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, traceID)
	assert.NotEmpty(t, spanID)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	route, ok := attrValue(spans[0].Attributes(), "http.route")
	require.True(t, ok)
	assert.Equal(t, "^/api/.*", route.AsString())

	outcome, ok := attrValue(spans[0].Attributes(), "gateway.outcome")
	require.True(t, ok)
	assert.Equal(t, "forwarded", outcome.AsString())

	status, ok := attrValue(spans[0].Attributes(), "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusCreated), status.AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracingMiddleware_ServerErrorMarksSpan(t *testing.T) {
	t.Parallel()

	tracer, recorder := newRecordingTracer(t)

	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	_, hasRoute := attrValue(spans[0].Attributes(), "http.route")
	assert.False(t, hasRoute)
}

func TestTracingMiddleware_DoesNotTouchRequestHeaders(t *testing.T) {
	t.Parallel()

	tracer, _ := newRecordingTracer(t)

	var seen http.Header
	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Authorization", "Bearer abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.Header{"Authorization": {"Bearer abc"}}, seen)
}
