package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/authgw/internal/observability"
)

// RequestID returns a middleware that stores a request ID in the request
// context for logging. An inbound X-Request-ID is reused. The ID is not
// added to the response, which is passed through from the backend.
func RequestID() Middleware {
	return RequestIDWithGenerator(func() string {
		return uuid.New().String()
	})
}

// RequestIDWithGenerator returns a middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderXRequestID)
			if requestID == "" {
				requestID = generator()
			}

			ctx := observability.ContextWithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
