package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/vyrodovalexey/authgw/internal/authz"
	"github.com/vyrodovalexey/authgw/internal/observability"
	"github.com/vyrodovalexey/authgw/internal/router"
	"github.com/vyrodovalexey/authgw/internal/util"
)

// HealthCheckPath answers 200 OK for any method, ahead of routing.
const HealthCheckPath = "/health-check"

// Plain-text response bodies.
const (
	BodyHealthy               = "OK"
	BodyNotFound              = "404 Not Found"
	BodyAuthUnavailable       = "Failed to connect to Authorization API"
	BodyDownstreamUnavailable = "Failed to connect to downstream service"
)

// Stage is the terminal state a request reached in the handler. It is
// reported through util.RouteHolder and becomes the outcome label on the
// request metrics.
type Stage string

// Handler stages.
const (
	StageHealth        Stage = "health"
	StageNotFound      Stage = "not_found"
	StageAuthFailed    Stage = "auth_failed"
	StageForwardFailed Stage = "forward_failed"
	StageForwarded     Stage = "forwarded"
)

// Forwarder delivers a routed request to its backend.
type Forwarder interface {
	Forward(ctx context.Context, inbound *http.Request, route *router.Route, credential string) (*http.Response, error)
}

// Handler routes, authorizes and forwards requests.
type Handler struct {
	routes     *router.RouteTable
	authorizer authz.Authorizer
	forwarder  Forwarder
	logger     observability.Logger
}

// HandlerOption is a functional option for configuring the handler.
type HandlerOption func(*Handler)

// WithAuthorizer sets the authorizer used for routes that require it.
func WithAuthorizer(authorizer authz.Authorizer) HandlerOption {
	return func(h *Handler) {
		h.authorizer = authorizer
	}
}

// WithHandlerLogger sets the logger for the handler.
func WithHandlerLogger(logger observability.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a new Handler. An authorizer is required when any
// route requires authorization.
func NewHandler(routes *router.RouteTable, forwarder Forwarder, opts ...HandlerOption) (*Handler, error) {
	if routes == nil {
		return nil, ErrNilRouteTable
	}
	if forwarder == nil {
		return nil, ErrNilForwarder
	}

	h := &Handler{
		routes:    routes,
		forwarder: forwarder,
		logger:    observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.authorizer == nil {
		for _, route := range routes.Routes() {
			if route.AuthRequired {
				return nil, ErrNoAuthorizer
			}
		}
	}

	return h, nil
}

// ServeHTTP implements http.Handler.
//
// The health check and routing both see the path exactly as the client
// sent it, percent-encoding included.
//
// Outbound calls run on a context detached from the client connection,
// so a client that goes away does not cancel an in-flight authorization
// or backend call.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()
	logger := h.logger.WithContext(r.Context())

	logger.Debug("incoming request", observability.String("path", path))

	if path == HealthCheckPath {
		h.respond(w, r, logger, StageHealth, http.StatusOK, BodyHealthy)
		return
	}

	route, err := h.routes.Match(path)
	if errors.Is(err, util.ErrNotFound) {
		logger.Warn("path not found", observability.Error(err))
		h.respond(w, r, logger, StageNotFound, http.StatusNotFound, BodyNotFound)
		return
	}

	util.SetRoute(r.Context(), route.Pattern, route.Target())
	logger = logger.With(observability.String("route", route.Pattern))

	ctx := context.WithoutCancel(r.Context())

	credential := ""
	if route.AuthRequired {
		credential, err = h.authorizer.Authorize(ctx, r.Header)
		if err != nil {
			logger.Warn("failed to connect to authorization API", observability.Error(err))
			h.respond(w, r, logger, StageAuthFailed, http.StatusServiceUnavailable, BodyAuthUnavailable)
			return
		}
	}

	resp, err := h.forwarder.Forward(ctx, r, route, credential)
	if err != nil {
		logger.Warn("failed to connect to downstream service", observability.Error(err))
		h.respond(w, r, logger, StageForwardFailed, http.StatusServiceUnavailable, BodyDownstreamUnavailable)
		return
	}
	defer resp.Body.Close()

	util.SetOutcome(r.Context(), string(StageForwarded))

	written, err := copyResponse(w, resp)
	if err != nil {
		logger.Warn("failed to copy backend response",
			observability.Int64("written", written),
			observability.Error(err),
		)
	}

	logger.Debug("request forwarded",
		observability.Int("status", resp.StatusCode),
		observability.String("backend", route.Target()),
	)
}

// respond writes a plain-text gateway response and records its stage.
func (h *Handler) respond(
	w http.ResponseWriter,
	r *http.Request,
	logger observability.Logger,
	stage Stage,
	status int,
	body string,
) {
	util.SetOutcome(r.Context(), string(stage))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)

	logger.Debug("request answered by gateway",
		observability.String("outcome", string(stage)),
		observability.Int("status", status),
	)
}

// copyResponse writes the backend status, headers, body and trailers to w
// unchanged.
func copyResponse(w http.ResponseWriter, resp *http.Response) (int64, error) {
	header := w.Header()
	for key, values := range resp.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	for key := range resp.Trailer {
		header.Add("Trailer", key)
	}

	w.WriteHeader(resp.StatusCode)

	written, err := io.Copy(w, resp.Body)

	// An empty body leaves the header unsent until the handler returns;
	// flush now so an outer router cannot substitute its own body.
	if written == 0 {
		_ = http.NewResponseController(w).Flush()
	}

	for key, values := range resp.Trailer {
		for _, v := range values {
			header.Add(key, v)
		}
	}

	return written, err
}
