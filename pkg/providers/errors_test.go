package providers

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "provider error with status",
			err:  &ProviderError{Provider: "googlebooks", StatusCode: 500, Message: "backend error"},
			want: `googlebooks: upstream status 500: backend error`,
		},
		{
			name: "provider error without status",
			err:  &ProviderError{Provider: "googlebooks", Message: "connection refused"},
			want: `googlebooks: connection refused`,
		},
		{
			name: "auth error",
			err:  &AuthError{Provider: "isbndb", Message: "invalid key"},
			want: `isbndb: credentials rejected: invalid key`,
		},
		{
			name: "rate limit without retry after",
			err:  &RateLimitError{Provider: "openlibrary", Message: "slow down"},
			want: `openlibrary: throttled upstream: slow down`,
		},
		{
			name: "validation error",
			err:  &ValidationError{Field: "isbn", Message: "isbn is required"},
			want: `invalid request (isbn): isbn is required`,
		},
		{
			name: "config error",
			err:  &ConfigError{Provider: "isbndb", Field: "api_key", Message: "missing"},
			want: `isbndb: bad setting api_key: missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRateLimitError_RetryAfter(t *testing.T) {
	err := &RateLimitError{Provider: "googlebooks", RetryAfter: 10 * time.Second, Message: "quota"}
	if !strings.Contains(err.Error(), "10s") {
		t.Errorf("expected error to contain retry duration, got %q", err.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{Provider: "googlebooks", Timeout: 3 * time.Second}
	for _, want := range []string{"googlebooks", "timeout", "3s"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got %q", want, err.Error())
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("invalid JSON")

	parseErr := &ParseError{Provider: "openlibrary", RawResponse: `{"docs": [`, Cause: cause}
	if !errors.Is(parseErr, cause) {
		t.Error("expected parse error to wrap cause")
	}

	notFound := &ProviderError{Provider: "isbndb", StatusCode: 404, Message: "Not Found", Cause: ErrNotFound}
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("expected 404 provider error to match ErrNotFound")
	}
}

func TestProviderError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{500, true},
		{503, true},
		{400, false},
		{404, false},
	}
	for _, tt := range tests {
		err := &ProviderError{Provider: "p", StatusCode: tt.status}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("status %d: expected retryable=%v, got %v", tt.status, tt.want, got)
		}
	}
}
