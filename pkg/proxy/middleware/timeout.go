package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds every request with context.WithTimeout. Handlers
// observe the deadline through the context; the lookup handlers map an
// expired deadline to 504 through proxy.HandleError. The handler keeps
// sole ownership of the ResponseWriter, so nothing is written twice.
//
// Example usage:
//
//	handler = TimeoutMiddleware(25 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
