package proxy

import (
	"context"
	"errors"
	"time"

	"bookproxy/pkg/chain"
	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/validate"
)

// RateLimitedError is returned by the lookup flow when the client's quota
// is exhausted.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return "rate limit exceeded"
}

// HandleError maps an error from the lookup flow to the client error
// envelope. Messages and details are client-safe: upstream error text
// never reaches the response.
//
// Example usage:
//
//	if err != nil {
//	    WriteErrorResponse(w, r, HandleError(err))
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var validationErr *validate.ValidationError
	if errors.As(err, &validationErr) {
		return types.NewValidationError(validationErr.Errors)
	}

	var rateLimitedErr *RateLimitedError
	if errors.As(err, &rateLimitedErr) {
		return types.NewRateLimitedError(rateLimitedErr.RetryAfter)
	}

	var notFoundErr *chain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return types.NewNotFoundError()
	}

	var failedErr *chain.AllProvidersFailedError
	if errors.As(err, &failedErr) {
		failures := failedErr.Failures
		if failures == nil {
			failures = []chain.Failure{}
		}
		return types.NewProvidersFailedError(failures)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewGatewayTimeoutError()
	}

	// Default to internal server error for unknown errors
	return types.NewServerError()
}
