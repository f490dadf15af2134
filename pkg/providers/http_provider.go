package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"bookproxy/pkg/telemetry/tracing"
)

const (
	// MaxResponseBytes caps how much of an upstream body is read.
	MaxResponseBytes = 4 << 20

	// maxErrorBody caps the upstream error text kept in errors and logs.
	maxErrorBody = 512

	retryBaseBackoff = 100 * time.Millisecond
	retryMaxBackoff  = time.Second
)

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, outbound throttling, retry logic, timeout
// handling and passive health bookkeeping.
//
// Concrete adapters (googlebooks, isbndb, openlibrary) embed this struct
// and implement Search and Lookup on top of DoJSON.
type HTTPProvider struct {
	// config contains the provider configuration
	config ProviderConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// limiter throttles outbound requests; nil when unthrottled
	limiter *rate.Limiter

	health *healthTracker
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = DefaultMaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	// The per-attempt deadline comes from the caller's context; the client
	// timeout is only a backstop for callers without one.
	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &HTTPProvider{
		config:  config,
		client:  client,
		limiter: limiter,
		health:  newHealthTracker(config.Name, time.Now),
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetType returns the provider's type.
func (p *HTTPProvider) GetType() string {
	return p.config.Type
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// IsHealthy reports the passive health derived from recent lookups.
func (p *HTTPProvider) IsHealthy() bool {
	return p.health.healthy()
}

// GetHealth returns a snapshot of the passive health counters.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	return p.health.snapshot()
}

// Configured reports true; adapters that need credentials override it.
func (p *HTTPProvider) Configured() bool {
	return true
}

// DoRequest performs a GET request with retry logic and timeout handling.
// Transient errors (5xx, network failures) are retried with exponential
// backoff. A 404 is returned as a *ProviderError wrapping ErrNotFound.
func (p *HTTPProvider) DoRequest(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt, retryBaseBackoff, retryMaxBackoff)
			slog.Debug("retrying request",
				"provider", p.config.Name,
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", backoff,
			)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, p.contextError(ctx)
			case <-timer.C:
			}
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, p.contextError(ctx)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", p.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		tracing.Inject(ctx, req.Header)

		slog.Debug("sending request to provider",
			"provider", p.config.Name,
			"url", req.URL.Redacted(),
		)

		resp, err := p.client.Do(req)
		if err != nil {
			p.health.attempt(false)

			if ctx.Err() != nil {
				return nil, p.contextError(ctx)
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			} else {
				lastErr = &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: err}
			}

			slog.Warn("request failed, will retry",
				"provider", p.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.health.attempt(true)
			p.health.succeed()
			return resp, nil
		}

		errorBody := readErrorBody(resp)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			// A definitive "no such volume" is a healthy answer.
			p.health.attempt(true)
			p.health.succeed()
			return nil, &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    errorBody,
				Cause:      ErrNotFound,
			}

		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			p.health.attempt(false)
			err := &AuthError{Provider: p.config.Name, Message: errorBody}
			p.health.fail(err)
			return nil, err

		case resp.StatusCode == http.StatusTooManyRequests:
			// Rate limit error - don't retry (the chain moves on)
			p.health.attempt(false)
			return nil, &RateLimitError{
				Provider:   p.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    errorBody,
			}

		case resp.StatusCode < 500:
			p.health.attempt(false)
			err := &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    errorBody,
			}
			p.health.fail(err)
			return nil, err

		default:
			lastErr = &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    errorBody,
			}
			p.health.attempt(false)

			slog.Warn("request returned error status, will retry",
				"provider", p.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	// All retries exhausted
	p.health.fail(lastErr)
	return nil, lastErr
}

// DoJSON performs a GET request and returns the raw response body for the
// adapter to decode.
func (p *HTTPProvider) DoJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	resp, err := p.DoRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, p.contextError(ctx)
		}
		return nil, &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	return body, nil
}

// NewParseError wraps a decode failure of body.
func (p *HTTPProvider) NewParseError(body []byte, cause error) error {
	raw := string(body)
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return &ParseError{
		Provider:    p.config.Name,
		RawResponse: raw,
		Cause:       fmt.Errorf("failed to unmarshal response: %w", cause),
	}
}

// contextError converts a finished context into a provider error. A
// deadline counts against the provider's health; a cancellation does not.
func (p *HTTPProvider) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err := &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
		p.health.fail(err)
		return err
	}
	return ctx.Err()
}

// Close closes idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	slog.Debug("provider closed", "provider", p.config.Name)
	return nil
}

func readErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return string(body)
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	// Try parsing as seconds
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP date
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}

// calculateBackoff returns the delay before retry attempt n (1-based),
// doubling from base and capped at maxBackoff.
func calculateBackoff(attempt int, base, maxBackoff time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}
	backoff := base << min(attempt-1, 10)
	return min(backoff, maxBackoff)
}
