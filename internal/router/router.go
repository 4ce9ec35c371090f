package router

import (
	"fmt"

	"github.com/vyrodovalexey/authgw/internal/config"
	"github.com/vyrodovalexey/authgw/internal/util"
)

// RouteTable resolves request paths to routes. It is built once and never
// mutated, so it is safe for concurrent use without locking.
type RouteTable struct {
	routes []*Route
}

// New compiles services into a RouteTable, keeping declaration order.
// An empty or nil slice yields a table that matches nothing.
func New(services []config.ServiceRoute) (*RouteTable, error) {
	routes := make([]*Route, 0, len(services))

	for i, s := range services {
		route, err := compileRoute(s)
		if err != nil {
			return nil, util.NewConfigErrorWithCause(
				fmt.Sprintf("services[%d].path", i),
				fmt.Sprintf("invalid path pattern %q", s.Path),
				err,
			)
		}
		routes = append(routes, route)
	}

	return &RouteTable{routes: routes}, nil
}

// Resolve returns the first route, in declaration order, whose pattern is
// found in path. The path is matched exactly as given; callers pass the
// escaped request path, so %2F never matches a literal slash.
func (t *RouteTable) Resolve(path string) (*Route, bool) {
	for _, route := range t.routes {
		if route.Matches(path) {
			return route, true
		}
	}
	return nil, false
}

// Match is Resolve returning a *util.RouteNotFoundError on a miss.
func (t *RouteTable) Match(path string) (*Route, error) {
	route, ok := t.Resolve(path)
	if !ok {
		return nil, util.NewRouteNotFoundError(path)
	}
	return route, nil
}

// Routes returns a copy of the routes in declaration order.
func (t *RouteTable) Routes() []*Route {
	routes := make([]*Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}
