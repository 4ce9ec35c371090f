// Package router maps request paths to backend services.
//
// Each configured service carries a regular expression that is searched
// for anywhere in the raw request path. Routes are tried in the order they
// were declared and the first match wins, so overlapping patterns resolve
// by position:
//
//	table, err := router.New(cfg.Services)
//	if err != nil {
//	    return err
//	}
//	route, err := table.Match(r.URL.EscapedPath())
//	if errors.Is(err, util.ErrNotFound) {
//	    // 404
//	}
//
// Patterns are not anchored; write "^/users$" to match a single path. An
// empty pattern matches every path.
package router
