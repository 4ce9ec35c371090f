package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/authgw/internal/observability"
	"github.com/vyrodovalexey/authgw/internal/router"
	"github.com/vyrodovalexey/authgw/internal/util"
)

const (
	// HeaderAuthorization carries the resolved credential downstream.
	HeaderAuthorization = "Authorization"

	tracerName = "github.com/vyrodovalexey/authgw/internal/proxy"
)

// Forwarder rebuilds inbound requests for a backend and sends them.
// Redirects are never followed; a backend 3xx reaches the caller as is.
type Forwarder struct {
	client        *http.Client
	timeout       time.Duration
	preserveQuery bool
	logger        observability.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

// Option is a functional option for the Forwarder.
type Option func(*Forwarder)

// WithHTTPClient sets the HTTP client. Its redirect policy is replaced.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Forwarder) {
		f.client = client
	}
}

// WithTimeout bounds each backend exchange, body included. Zero disables
// the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Forwarder) {
		f.timeout = timeout
	}
}

// WithPreserveQuery appends the inbound query string to the backend URI.
func WithPreserveQuery(preserve bool) Option {
	return func(f *Forwarder) {
		f.preserveQuery = preserve
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// WithMetrics sets the metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(f *Forwarder) {
		f.metrics = metrics
	}
}

// WithTracer sets the tracer used for client spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Forwarder) {
		f.tracer = tracer
	}
}

// NewForwarder creates a new Forwarder.
func NewForwarder(opts ...Option) *Forwarder {
	f := &Forwarder{
		client: &http.Client{},
		logger: observability.NopLogger(),
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(f)
	}

	client := *f.client
	client.Transport = identityTransport(client.Transport)
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if f.timeout > 0 {
		client.Timeout = f.timeout
	}
	f.client = &client

	if f.metrics == nil {
		f.metrics = NewMetrics("gateway")
	}

	return f
}

// identityTransport returns rt with transparent gzip disabled, so backend
// responses reach the caller still encoded and the client adds no
// Accept-Encoding of its own. Transports of other types are used as is.
func identityTransport(rt http.RoundTripper) http.RoundTripper {
	var base *http.Transport
	switch t := rt.(type) {
	case nil:
		base = http.DefaultTransport.(*http.Transport)
	case *http.Transport:
		if t.DisableCompression {
			return t
		}
		base = t
	default:
		return rt
	}
	tr := base.Clone()
	tr.DisableCompression = true
	return tr
}

// Build creates the backend request for inbound. The URI is the route
// target followed by the inbound path, the headers are a full copy with
// Authorization replaced by credential, and the body is read fully into
// memory. Method and Host are kept. The backend request always goes out
// as HTTP/1.1 or HTTP/2, whatever the inbound version was.
func (f *Forwarder) Build(
	ctx context.Context,
	inbound *http.Request,
	route *router.Route,
	credential string,
) (*http.Request, error) {
	var body []byte
	if inbound.Body != nil && inbound.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(inbound.Body)
		if err != nil {
			return nil, newBuildError(route.Pattern, "failed to read request body", err)
		}
	}

	uri := route.Target() + inbound.URL.EscapedPath()
	if f.preserveQuery && inbound.URL.RawQuery != "" {
		uri += "?" + inbound.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, inbound.Method, uri, bytes.NewReader(body))
	if err != nil {
		return nil, newBuildError(route.Pattern, "invalid backend URI "+uri, err)
	}

	req.Header = inbound.Header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set(HeaderAuthorization, credential)
	// An absent User-Agent must stay absent rather than become Go's default.
	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header["User-Agent"] = []string{""}
	}

	req.Host = inbound.Host

	return req, nil
}

// Send delivers req and returns the backend response unchanged. The
// caller must close the response body.
func (f *Forwarder) Send(req *http.Request) (*http.Response, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			err = util.NewTimeoutError("forward", f.timeout, err)
		}
		return nil, newSendError(req.URL.String(), err)
	}
	return resp, nil
}

// Forward builds and sends the backend request for route, recording a
// client span and metrics labelled with the route pattern.
func (f *Forwarder) Forward(
	ctx context.Context,
	inbound *http.Request,
	route *router.Route,
	credential string,
) (*http.Response, error) {
	start := time.Now()
	logger := f.logger.WithContext(ctx)

	ctx, span := f.tracer.Start(ctx, "proxy.Forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", inbound.Method),
			attribute.String("http.route", route.Pattern),
		),
	)
	defer span.End()

	req, err := f.Build(ctx, inbound, route, credential)
	if err != nil {
		f.metrics.RecordError(route.Pattern, reasonBuild)
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		logger.Warn("failed to build backend request",
			observability.String("route", route.Pattern),
			observability.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("url.full", req.URL.String()))
	logger.Debug("forwarding request",
		observability.String("route", route.Pattern),
		observability.String("target", req.URL.String()),
	)

	resp, err := f.Send(req)
	if err != nil {
		reason := reasonConnection
		if errors.Is(err, util.ErrTimeout) {
			reason = reasonTimeout
		}
		f.metrics.RecordError(route.Pattern, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend unavailable")
		logger.Warn("failed to forward request",
			observability.String("route", route.Pattern),
			observability.String("target", req.URL.String()),
			observability.String("reason", reason),
			observability.Error(err),
		)
		var fwdErr *ForwardError
		if errors.As(err, &fwdErr) {
			fwdErr.Route = route.Pattern
		}
		return nil, err
	}

	f.metrics.RecordResponse(route.Pattern, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	return resp, nil
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
