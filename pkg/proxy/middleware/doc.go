// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server chains middleware in this order, outermost first:
//
//	RequestID -> Recovery(logger) -> Logging(logger) -> tracing -> CORS(cfg) -> Timeout -> mux
//
// RequestID runs first so panics, access records and error bodies all
// carry the ID. Recovery sits outside Logging so a panicking request is
// still answered; the access record of such a request is not written.
//
// MetricsMiddleware wraps individual routes so the route label is fixed
// rather than derived from the raw path.
//
// # Request ID
//
// RequestIDMiddleware reuses a well-formed client X-Request-ID or generates
// a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so every log record written
// with the request context carries it, and it is echoed in error bodies.
//
// # CORS
//
// The lookup API is read-only:
//
//	Access-Control-Allow-Origin: *
//	Access-Control-Allow-Methods: GET, OPTIONS
//	Access-Control-Expose-Headers: X-Request-ID, X-Cache, X-Cache-Age, ...
//	Access-Control-Max-Age: 86400
//
// Configured under server.cors:
//
//	server:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["https://books.example.com"]
//	    max_age: 86400
//
// # Timeout
//
// TimeoutMiddleware only sets a context deadline. Handlers see
// context.DeadlineExceeded and answer 504 themselves, so the response
// writer is never shared between goroutines.
package middleware
