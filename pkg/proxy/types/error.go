package types

import (
	"net/http"
	"time"
)

// ErrorResponse is the body of every non-2xx response.
//
//	{"error": "too many requests", "status": 429, "requestId": "..."}
type ErrorResponse struct {
	// Message is a client-safe, human-readable message.
	Message string `json:"error"`

	// Status mirrors the HTTP status code.
	Status int `json:"status"`

	// Details carries structured context: field errors for 400s and
	// per-provider reasons for 503s.
	Details any `json:"details,omitempty"`

	// RequestID correlates the response with server logs.
	RequestID string `json:"requestId"`

	// RetryAfter, when set, is written as the Retry-After header.
	RetryAfter time.Duration `json:"-"`
}

// Client-facing messages.
const (
	MessageInvalidRequest     = "invalid request"
	MessageRateLimited        = "too many requests"
	MessageNotFound           = "no matching volume found"
	MessageProvidersFailed    = "all upstream providers failed"
	MessageInternal           = "an internal error occurred, please try again later"
	MessageMethodNotAllowed   = "method not allowed"
	MessageRouteNotFound      = "not found"
	MessageRequestTimeout     = "request timed out"
	MessageServiceUnavailable = "service unavailable"
)

// NewErrorResponse creates an error response with the given status.
func NewErrorResponse(status int, message string, details any) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
		Status:  status,
		Details: details,
	}
}

// NewValidationError creates a 400 response. details is typically the
// list of field errors.
func NewValidationError(details any) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, MessageInvalidRequest, details)
}

// NewRateLimitedError creates a 429 response with Retry-After.
func NewRateLimitedError(retryAfter time.Duration) *ErrorResponse {
	resp := NewErrorResponse(http.StatusTooManyRequests, MessageRateLimited, nil)
	resp.RetryAfter = retryAfter
	return resp
}

// NewNotFoundError creates a 404 response for a lookup with no match.
func NewNotFoundError() *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, MessageNotFound, nil)
}

// NewProvidersFailedError creates a 503 response listing why each
// provider failed.
func NewProvidersFailedError(failures any) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, MessageProvidersFailed, failures)
}

// NewServerError creates a generic 500 response.
func NewServerError() *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, MessageInternal, nil)
}

// NewGatewayTimeoutError creates a 504 response for a request that ran
// past the server's request timeout.
func NewGatewayTimeoutError() *ErrorResponse {
	return NewErrorResponse(http.StatusGatewayTimeout, MessageRequestTimeout, nil)
}

// NewMethodNotAllowedError creates a 405 response.
func NewMethodNotAllowedError() *ErrorResponse {
	return NewErrorResponse(http.StatusMethodNotAllowed, MessageMethodNotAllowed, nil)
}

// NewRouteNotFoundError creates a 404 response for an unknown path.
func NewRouteNotFoundError() *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, MessageRouteNotFound, nil)
}

// HTTPStatusCode returns the status to write, defaulting to 500.
func (e *ErrorResponse) HTTPStatusCode() int {
	if e.Status < 400 || e.Status > 599 {
		return http.StatusInternalServerError
	}
	return e.Status
}
