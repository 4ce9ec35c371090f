package router

import (
	"regexp"

	"github.com/vyrodovalexey/authgw/internal/config"
)

// Route is a compiled service route.
type Route struct {
	// Pattern is the regular expression as written in the configuration.
	Pattern string

	// Regex is the compiled Pattern.
	Regex *regexp.Regexp

	// TargetService is the backend base address including its scheme.
	TargetService string

	// TargetPort is the backend port as a numeric string.
	TargetPort string

	// AuthRequired reports whether the request must be authorized first.
	AuthRequired bool
}

// compileRoute compiles a configured service into a Route.
func compileRoute(s config.ServiceRoute) (*Route, error) {
	re, err := regexp.Compile(s.Path)
	if err != nil {
		return nil, err
	}

	return &Route{
		Pattern:       s.Path,
		Regex:         re,
		TargetService: s.TargetService,
		TargetPort:    s.TargetPort,
		AuthRequired:  s.RequiresAuthentication(),
	}, nil
}

// Matches reports whether the pattern is found anywhere in path.
func (r *Route) Matches(path string) bool {
	return r.Regex.MatchString(path)
}

// Target returns the backend base URI without the request path,
// e.g. "http://127.0.0.1:9000".
func (r *Route) Target() string {
	return r.TargetService + ":" + r.TargetPort
}
