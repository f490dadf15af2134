package proxy

import (
	"net/http"

	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/ratelimit"
	"bookproxy/pkg/validate"
)

// ParseSearchRequest validates the query parameters of GET /search.
func ParseSearchRequest(r *http.Request) (*validate.SearchQuery, error) {
	return validate.ParseSearch(r.URL.Query())
}

// ParseISBNRequest validates the isbn parameter of GET /isbn.
func ParseISBNRequest(r *http.Request) (validate.ISBNKey, error) {
	return validate.ParseISBN(r.URL.Query().Get(types.ParamISBN))
}

// ExtractClient builds the rate limiter's view of the caller.
func ExtractClient(r *http.Request, trustForwarded bool) ratelimit.ClientContext {
	return ratelimit.ClientContextFromRequest(r, trustForwarded)
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string.
//
// This allows clients to provide their own request IDs for correlation.
// If not provided, the middleware will generate one.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(types.HeaderRequestID)
}
