package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookproxy/pkg/chain"
	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/telemetry/logging"
	"bookproxy/pkg/validate"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        &validate.ValidationError{Errors: []validate.FieldError{{Field: "q", Code: validate.CodeRequired, Message: "q is required"}}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    types.MessageInvalidRequest,
		},
		{
			name:       "wrapped validation",
			err:        fmt.Errorf("search: %w", &validate.ValidationError{}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    types.MessageInvalidRequest,
		},
		{
			name:       "rate limited",
			err:        &RateLimitedError{RetryAfter: 30 * time.Second},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    types.MessageRateLimited,
		},
		{
			name:       "not found",
			err:        &chain.NotFoundError{},
			wantStatus: http.StatusNotFound,
			wantMsg:    types.MessageNotFound,
		},
		{
			name:       "all providers failed",
			err:        &chain.AllProvidersFailedError{Failures: []chain.Failure{{Provider: "googlebooks", Reason: "upstream returned status 502"}}},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    types.MessageProvidersFailed,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    types.MessageRequestTimeout,
		},
		{
			name:       "unknown",
			err:        errors.New("dial tcp 10.0.0.1:443: key=secret"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    types.MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := HandleError(tt.err)
			if resp.HTTPStatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.HTTPStatusCode(), tt.wantStatus)
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandleErrorDetails(t *testing.T) {
	failures := []chain.Failure{
		{Provider: "googlebooks", Reason: "timed out after 3s", Timeout: true},
		{Provider: "isbndb", Reason: "not configured"},
	}
	resp := HandleError(&chain.AllProvidersFailedError{Failures: failures})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"provider":"googlebooks"`, `"timeout":true`, `"reason":"not configured"`, `"status":503`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}

	// An empty failure list still renders as an array.
	resp = HandleError(&chain.AllProvidersFailedError{})
	data, _ = json.Marshal(resp)
	if !strings.Contains(string(data), `"details":[]`) {
		t.Errorf("body %s should carry empty details array", data)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/search", nil)
	r = r.WithContext(logging.WithRequestID(r.Context(), "req-123"))
	w := httptest.NewRecorder()

	if err := WriteErrorResponse(w, r, types.NewRateLimitedError(1500*time.Millisecond)); err != nil {
		t.Fatalf("WriteErrorResponse: %v", err)
	}

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body types.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RequestID != "req-123" {
		t.Errorf("requestId = %q, want req-123", body.RequestID)
	}
	if body.Status != http.StatusTooManyRequests || body.Message != types.MessageRateLimited {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{time.Hour, 3600},
	}
	for _, tt := range tests {
		if got := RetryAfterSeconds(tt.in); got != tt.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/search", nil)
	w := httptest.NewRecorder()

	MethodNotAllowed(w, r, http.MethodGet, http.MethodOptions)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if allow := w.Header().Values("Allow"); len(allow) != 2 {
		t.Errorf("Allow = %v", allow)
	}
}
