// Package proxy forwards routed requests to backend services.
//
// Build turns an inbound request into a backend request: the URI is the
// route's target service and port followed by the inbound path, all
// headers are copied with Authorization replaced by the resolved
// credential, and the body is buffered in full. Send performs the call
// with a pooled client that never follows redirects, never adds its own
// User-Agent or Accept-Encoding, and never decodes a compressed
// response. Forward combines
// the two and records a client span plus per-route metrics.
//
// Failures are reported as *ForwardError, which matches ErrForwardFailed
// and util.ErrBackendUnavail.
package proxy
