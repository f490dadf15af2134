// Package server assembles the book lookup service and runs its HTTP
// listener.
//
// Build creates every component from configuration: the in-memory hot
// tier, the SQLite cold tier, the cache manager, the provider chain, the
// rate limiter, metrics, tracing and the cold tier pruning schedule.
// New takes already-built components, which is what tests use.
//
// # Routes
//
//   - GET /search - title/author search through cache and provider chain
//   - GET /isbn - ISBN lookup through cache and provider chain
//   - GET /health - cache tier and provider status, always 200
//   - GET /live, /ready, /version - probes (paths are configurable)
//   - GET /metrics - Prometheus metrics when enabled
//
// Any other path answers 404 in the standard error envelope.
//
// # Middleware Chain
//
// From outermost to innermost: RequestID, Recovery, Logging, tracing,
// CORS, Timeout. The request ID is assigned first so panics, log lines
// and error bodies all carry it.
//
// # Graceful Shutdown
//
// Serve returns when its context is cancelled. In-flight requests are
// drained up to server.shutdown_timeout, background cache promotions are
// awaited, the pruning schedule is stopped and the stores are closed.
package server
