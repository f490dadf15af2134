package chain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks.
var (
	// ErrNotFound is matched by *NotFoundError.
	ErrNotFound = errors.New("no matching volume")

	// ErrAllProvidersFailed is matched by *AllProvidersFailedError.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Failure records why one provider did not produce the answer. Reason is
// safe to show to clients; it never contains URLs or credentials.
type Failure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
	Timeout  bool   `json:"timeout,omitempty"`
}

func (f Failure) String() string {
	return f.Provider + ": " + f.Reason
}

// NotFoundError is returned when at least one provider answered
// definitively that nothing matches and no provider returned volumes.
type NotFoundError struct {
	// Failures lists every provider outcome, empty answers included.
	Failures []Failure
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "no matching volume found by any provider"
}

// Is implements error matching for errors.Is().
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AllProvidersFailedError is returned when every provider failed without
// a definitive answer.
type AllProvidersFailedError struct {
	// Failures lists each provider's failure in chain order.
	Failures []Failure
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	if len(e.Failures) == 0 {
		return "all providers failed (no providers configured)"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("all providers failed (%s)", strings.Join(parts, "; "))
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}
