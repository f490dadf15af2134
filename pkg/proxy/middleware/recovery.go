package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"bookproxy/pkg/proxy"
	"bookproxy/pkg/proxy/types"
)

// RecoveryMiddleware turns a handler panic into a 500 error envelope and an
// ERROR log record with the stack. If the handler had already started the
// response, only the log record is written. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.ErrorContext(r.Context(), "handler panicked",
					"panic", v,
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", rec.status != 0,
					"stack", string(debug.Stack()),
				)
				if rec.status != 0 {
					return
				}
				_ = proxy.WriteErrorResponse(rec, r, types.NewServerError())
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
