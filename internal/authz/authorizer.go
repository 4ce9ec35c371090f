package authz

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/authgw/internal/observability"
)

const (
	// HeaderAuthorization is the only header sent to the endpoint.
	HeaderAuthorization = "Authorization"

	// maxDrainBytes bounds how much of an endpoint response is read
	// before the connection is returned to the pool.
	maxDrainBytes = 64 << 10

	tracerName = "github.com/vyrodovalexey/authgw/internal/authz"
)

// Authorizer approves a request based on its Authorization header.
// On success it returns the credential to forward downstream.
type Authorizer interface {
	Authorize(ctx context.Context, header http.Header) (string, error)
}

// Client asks a remote endpoint whether a credential is acceptable. Any
// 2xx answer approves it; the response body is ignored.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	logger     observability.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

var _ Authorizer = (*Client)(nil)

// Option is a functional option for the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithTracer sets the tracer used for client spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a Client for the endpoint at rawURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	if rawURL == "" {
		return nil, ErrNoEndpoint
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, err
	}

	c := &Client{
		url:        rawURL,
		httpClient: &http.Client{},
		logger:     observability.NopLogger(),
		tracer:     otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.metrics == nil {
		c.metrics = NewMetrics("gateway")
	}

	return c, nil
}

// URL returns the endpoint address.
func (c *Client) URL() string {
	return c.url
}

// Authorize sends a GET carrying only the Authorization header from
// header. A missing header is sent as an empty value. The returned
// credential is the inbound value, unchanged.
func (c *Client) Authorize(ctx context.Context, header http.Header) (string, error) {
	start := time.Now()
	logger := c.logger.WithContext(ctx)

	credential, present := credentialFrom(header)
	if !present {
		logger.Warn("authorization header not found")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "authz.Authorize",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", c.url),
			attribute.Bool("authz.credential_present", present),
		),
	)
	defer span.End()

	status, err := c.call(ctx, credential)
	if err != nil {
		authErr := newTransportError(c.url, err)
		c.metrics.RecordRequest(decisionError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "authorization endpoint unreachable")
		logger.Warn("authorization request failed",
			observability.String("url", c.url),
			observability.Error(err),
		)
		return "", authErr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status < 200 || status > 299 {
		c.metrics.RecordRequest(decisionDeny, time.Since(start))
		span.SetStatus(codes.Error, "authorization denied")
		logger.Warn("authorization denied",
			observability.String("url", c.url),
			observability.Int("status_code", status),
		)
		return "", newDeniedError(c.url, status)
	}

	c.metrics.RecordRequest(decisionAllow, time.Since(start))
	logger.Debug("authorization successful",
		observability.Int("status_code", status),
		observability.Duration("duration", time.Since(start)),
	)

	return credential, nil
}

// call performs the request and returns the response status.
func (c *Client) call(ctx context.Context, credential string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set(HeaderAuthorization, credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}

// credentialFrom returns the first Authorization value and whether the
// header was present at all.
func credentialFrom(header http.Header) (string, bool) {
	values := header.Values(HeaderAuthorization)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}
