// Package authz checks request credentials against a remote endpoint.
//
// The Client sends a GET to the configured URL carrying only the inbound
// Authorization header. A 2xx answer approves the request and the original
// header value is returned as the credential to forward. Anything else,
// including a transport failure, yields an *Error matching
// ErrAuthorizationFailed. Decisions are never cached.
//
//	client, err := authz.NewClient(cfg.AuthorizationAPIURL,
//	    authz.WithTimeout(cfg.Authorization.Timeout.Duration()),
//	    authz.WithLogger(logger),
//	)
//	credential, err := client.Authorize(ctx, r.Header)
package authz
