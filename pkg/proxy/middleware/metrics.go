package middleware

import (
	"net/http"
	"time"

	"bookproxy/pkg/telemetry/metrics"
)

// MetricsMiddleware records request count and latency for one route. The
// cache label is read from the X-Cache header the handler set, so hits
// and misses get separate latency series.
//
// Example usage:
//
//	mux.Handle("/search", MetricsMiddleware(collector, "/search")(searchHandler))
func MetricsMiddleware(collector *metrics.Collector, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if collector == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			collector.RecordRequest(route, rec.Status(), rec.Header().Get("X-Cache"), time.Since(start))
		})
	}
}
