package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a provider answered definitively that it
// has no matching volume.
var ErrNotFound = errors.New("no matching volume")

// ProviderError is an upstream failure that has no more specific type:
// transport errors (StatusCode 0) and unexpected HTTP statuses.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Retryable reports whether another attempt against the same provider may
// succeed. Transport failures and 5xx are retryable; 4xx are not.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// AuthError means the provider rejected our credentials (401 or 403).
// It is never retried and never cached.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: credentials rejected: %s", e.Provider, e.Message)
}

// RateLimitError means the provider throttled us (429). RetryAfter is zero
// when the response carried no usable Retry-After header.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter <= 0 {
		return fmt.Sprintf("%s: throttled upstream: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: throttled upstream, retry in %s: %s", e.Provider, e.RetryAfter, e.Message)
}

// TimeoutError means the provider did not answer within its budget.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response within %s (timeout)", e.Provider, e.Timeout)
}

// ParseError means the provider answered 2xx with a body we could not
// decode. RawResponse is truncated before it is stored.
type ParseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: undecodable response: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ValidationError rejects a Request before any upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request (%s): %s", e.Field, e.Message)
}

// ConfigError reports a provider that cannot be constructed or is missing
// a required setting such as an API key.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: bad setting %s: %s", e.Provider, e.Field, e.Message)
}
