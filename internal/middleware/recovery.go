package middleware

import (
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/vyrodovalexey/authgw/internal/observability"
	"github.com/vyrodovalexey/authgw/internal/util"
)

// Recovery returns a middleware that turns a handler panic into a plain
// 500 response. http.ErrAbortHandler is re-raised so the server aborts
// the connection. metrics may be nil.
func Recovery(logger observability.Logger, metrics *Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := util.NewStatusCapturingResponseWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.WithContext(r.Context()).Error("panic recovered",
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.Any("error", rec),
					observability.String("stack", string(debug.Stack())),
				)

				if metrics != nil {
					metrics.panicsRecovered.Inc()
				}

				if rw.HeaderWritten {
					return
				}
				rw.Header().Set(HeaderContentType, ContentTypeTextPlain)
				rw.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(rw, "Internal Server Error")
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
