package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrNotRunning is returned by a state check whose component is down.
var ErrNotRunning = errors.New("not running")

// DependencyCheck represents a named readiness check.
type DependencyCheck struct {
	name     string
	checkFn  func(ctx context.Context) error
	critical bool
}

// DependencyCheckOption configures a dependency check.
type DependencyCheckOption func(*DependencyCheck)

// WithCritical marks the check as critical. A failing critical check
// makes readiness unhealthy instead of degraded.
func WithCritical(critical bool) DependencyCheckOption {
	return func(d *DependencyCheck) {
		d.critical = critical
	}
}

// NewDependencyCheck creates a check from a function.
func NewDependencyCheck(
	name string,
	checkFn func(ctx context.Context) error,
	opts ...DependencyCheckOption,
) *DependencyCheck {
	d := &DependencyCheck{
		name:    name,
		checkFn: checkFn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the name of the dependency check.
func (d *DependencyCheck) Name() string {
	return d.name
}

// Check performs the dependency check.
func (d *DependencyCheck) Check(ctx context.Context) error {
	return d.checkFn(ctx)
}

// IsCritical returns true if the dependency is critical.
func (d *DependencyCheck) IsCritical() bool {
	return d.critical
}

// TCPHealthCheck dials address and closes the connection.
func TCPHealthCheck(name, address string, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, func(ctx context.Context) error {
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return conn.Close()
	}, opts...)
}

// StateCheck reports ErrNotRunning while running returns false.
func StateCheck(name string, running func() bool, opts ...DependencyCheckOption) *DependencyCheck {
	return NewDependencyCheck(name, func(context.Context) error {
		if !running() {
			return ErrNotRunning
		}
		return nil
	}, opts...)
}

// DialAddress returns the host:port to dial for an http or https URL,
// using the scheme's default port when none is given.
func DialAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", fmt.Errorf("URL %q has no port and unknown scheme %q", rawURL, u.Scheme)
		}
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}
