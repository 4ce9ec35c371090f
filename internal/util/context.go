package util

import (
	"context"
	"net/http"
)

type routeHolderKey struct{}

// RouteHolder is how the gateway handler reports what it did with a
// request to the middleware wrapped around it. The outermost middleware
// installs an empty holder; the handler fills it in; every wrapper reads
// it once the inner handler returns.
type RouteHolder struct {
	// Route is the matched pattern, empty when nothing matched.
	Route string
	// Backend is the matched route's target.
	Backend string
	// Outcome is the handler's terminal stage, such as "forwarded".
	Outcome string
}

// ContextWithRouteHolder installs h in ctx.
func ContextWithRouteHolder(ctx context.Context, h *RouteHolder) context.Context {
	return context.WithValue(ctx, routeHolderKey{}, h)
}

// RouteHolderFromContext returns the installed holder, or nil.
func RouteHolderFromContext(ctx context.Context) *RouteHolder {
	h, _ := ctx.Value(routeHolderKey{}).(*RouteHolder)
	return h
}

// EnsureRouteHolder returns r's holder, deriving a request that carries a
// fresh one when r has none.
func EnsureRouteHolder(r *http.Request) (*http.Request, *RouteHolder) {
	if h := RouteHolderFromContext(r.Context()); h != nil {
		return r, h
	}
	h := &RouteHolder{}
	return r.WithContext(ContextWithRouteHolder(r.Context(), h)), h
}

// SetRoute records the matched route. It is a no-op without a holder.
func SetRoute(ctx context.Context, route, backend string) {
	if h := RouteHolderFromContext(ctx); h != nil {
		h.Route = route
		h.Backend = backend
	}
}

// SetOutcome records the handler's terminal stage. It is a no-op without
// a holder.
func SetOutcome(ctx context.Context, outcome string) {
	if h := RouteHolderFromContext(ctx); h != nil {
		h.Outcome = outcome
	}
}
