// Package util provides shared helpers for the gateway.
//
// # Error Conventions
//
// Every package follows the same error pattern:
//
//   - Sentinel errors (errors.New) for stable conditions that callers
//     check with errors.Is(). Example: ErrNotFound.
//   - Structured error types for errors that carry additional fields
//     (ConfigError, RouteNotFoundError, TimeoutError).
//     Each type implements Error(), Unwrap() when it wraps, and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping.
//
// # Context Helpers
//
// The route matched by the gateway handler, and the stage the request
// ended in, are reported back to the surrounding middleware through a
// RouteHolder:
//
//	r, holder := util.EnsureRouteHolder(r)
//	next.ServeHTTP(w, r)
//	route, outcome := holder.Route, holder.Outcome
//
// # HTTP Utilities
//
//	w := util.NewStatusCapturingResponseWriter(responseWriter)
//	handler.ServeHTTP(w, r)
//	statusCode, size := w.StatusCode, w.Size
package util
