package providers

import (
	"net/http"
	"time"
)

// otherEndpoint labels requests no route matched. Raw paths are never used as
// labels so unrouted traffic cannot create new series.
const otherEndpoint = "other"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware records request counts and latency labelled by the
// matched ServeMux pattern. next must be a *http.ServeMux (or wrap one
// without cloning the request) for the pattern to be visible here.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		endpoint := endpointLabel(r)
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, duration)
	})
}

func endpointLabel(r *http.Request) string {
	if r.Pattern == "" {
		return otherEndpoint
	}
	return r.Pattern
}
