package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/authgw/internal/observability"
	"github.com/vyrodovalexey/authgw/internal/util"
)

// Logging returns a middleware that logs one line per request once the
// response is complete. The matched route, if any, is read from the
// route holder the handler fills in.
func Logging(logger observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			r, holder := util.EnsureRouteHolder(r)
			rw := util.NewStatusCapturingResponseWriter(w)

			next.ServeHTTP(rw, r)

			fields := []observability.Field{
				observability.String("method", r.Method),
				observability.String("path", r.URL.EscapedPath()),
				observability.String("query", r.URL.RawQuery),
				observability.Int("status", rw.StatusCode),
				observability.Int("size", rw.Size),
				observability.Duration("duration", time.Since(start)),
				observability.String("remote_addr", r.RemoteAddr),
				observability.String("user_agent", r.UserAgent()),
			}
			if holder.Outcome != "" {
				fields = append(fields, observability.String("outcome", holder.Outcome))
			}
			if holder.Route != "" {
				fields = append(fields,
					observability.String("route", holder.Route),
					observability.String("backend", holder.Backend),
				)
			}

			logger.WithContext(r.Context()).Info("http request", fields...)
		})
	}
}
