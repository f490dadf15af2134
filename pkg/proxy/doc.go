// Package proxy holds the HTTP surface shared by the lookup handlers:
// request parsing, the error envelope and response writers.
//
// # Architecture
//
//   - handlers: GET /search, GET /isbn and GET /health
//   - middleware: request ID, logging, CORS, recovery and timeouts
//   - types: JSON bodies and header names
//
// The server package wires these into a mux.
//
// # Error Handling
//
// HandleError maps the typed errors of the lookup flow to statuses:
//
//	*validate.ValidationError       -> 400, details = field errors
//	*proxy.RateLimitedError         -> 429, Retry-After
//	*chain.NotFoundError            -> 404
//	*chain.AllProvidersFailedError  -> 503, details = per-provider reasons
//	context.DeadlineExceeded        -> 504
//	anything else                   -> 500, generic message
//
// Error bodies never contain upstream error text, URLs or credentials.
package proxy
