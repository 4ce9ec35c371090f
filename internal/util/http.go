package util

import "net/http"

// StatusCapturingResponseWriter remembers the status and body size a
// handler produced. The logging, metrics and tracing middleware each wrap
// the writer once and read the fields after the inner handler returns.
type StatusCapturingResponseWriter struct {
	http.ResponseWriter
	// StatusCode is 200 until the handler says otherwise.
	StatusCode int
	// Size counts body bytes accepted by the underlying writer.
	Size int
	// HeaderWritten is set once the status line is committed.
	HeaderWritten bool
}

// NewStatusCapturingResponseWriter wraps w.
func NewStatusCapturingResponseWriter(w http.ResponseWriter) *StatusCapturingResponseWriter {
	return &StatusCapturingResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader commits code. Later calls are dropped, as net/http does.
func (w *StatusCapturingResponseWriter) WriteHeader(code int) {
	if w.HeaderWritten {
		return
	}
	w.StatusCode, w.HeaderWritten = code, true
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusCapturingResponseWriter) Write(b []byte) (int, error) {
	w.HeaderWritten = true
	n, err := w.ResponseWriter.Write(b)
	w.Size += n
	return n, err
}

// Flush commits the status and pushes buffered bytes to the client when
// the underlying writer supports it.
func (w *StatusCapturingResponseWriter) Flush() {
	w.HeaderWritten = true
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (w *StatusCapturingResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
