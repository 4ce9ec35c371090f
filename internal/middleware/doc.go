// Package middleware provides the HTTP middleware wrapped around the
// gateway handler: panic recovery, request IDs and request logging.
//
//	h := middleware.Chain(handler,
//	    middleware.Recovery(logger, metrics),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
package middleware
