package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"bookproxy/pkg/providers"
	"bookproxy/pkg/telemetry/metrics"
	"bookproxy/pkg/telemetry/tracing"
)

// DefaultProviderTimeout applies to providers configured without one.
const DefaultProviderTimeout = 5 * time.Second

// Attempt outcomes, used as metric labels and span attributes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Options configures a Chain. Every field is optional.
type Options struct {
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger
}

// Chain tries providers strictly in order until one returns volumes.
type Chain struct {
	providers []providers.Provider
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// New creates a chain over providers in priority order.
func New(ordered []providers.Provider, opts Options) *Chain {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		providers: append([]providers.Provider(nil), ordered...),
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		logger:    logger,
	}
}

// Providers returns the chain's providers in order.
func (c *Chain) Providers() []providers.Provider {
	return append([]providers.Provider(nil), c.providers...)
}

// Resolve runs req through the chain. The first provider to return at
// least one volume wins and its name is stamped on the result. If no
// provider wins, a *NotFoundError is returned when any provider answered
// definitively empty, and an *AllProvidersFailedError otherwise. If ctx
// ends, its error is returned.
func (c *Chain) Resolve(ctx context.Context, req providers.Request) (*providers.Result, error) {
	ctx, span := c.tracer.Start(ctx, "chain.resolve")
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrRequestKind, string(req.Kind)))

	failures := make([]Failure, 0, len(c.providers))
	definitiveEmpty := false

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			tracing.SetStatus(span, err)
			return nil, err
		}

		name := p.GetName()

		if !p.Configured() {
			c.metrics.RecordProviderAttempt(name, OutcomeSkipped, 0)
			failures = append(failures, Failure{Provider: name, Reason: "not configured"})
			c.logger.DebugContext(ctx, "skipping unconfigured provider", "provider", name)
			continue
		}

		res, err := c.attempt(ctx, i+1, p, req)

		// A finished parent context ends the chain regardless of what the
		// attempt reported.
		if ctxErr := ctx.Err(); ctxErr != nil {
			tracing.SetStatus(span, ctxErr)
			return nil, ctxErr
		}

		switch {
		case err == nil && !res.Empty():
			res.Provider = name
			span.SetAttributes(
				attribute.String(tracing.AttrProvider, name),
				attribute.Int(tracing.AttrResultCount, len(res.Volumes)),
			)
			tracing.SetStatus(span, nil)
			return res, nil

		case err == nil, errors.Is(err, providers.ErrNotFound):
			definitiveEmpty = true
			failures = append(failures, Failure{Provider: name, Reason: "no results"})

		default:
			failures = append(failures, describe(p, err))
			c.logger.WarnContext(ctx, "provider failed, trying next",
				"provider", name,
				"priority", i+1,
				"error", err,
			)
		}
	}

	if definitiveEmpty {
		c.metrics.RecordChainExhausted("not_found")
		err := &NotFoundError{Failures: failures}
		span.SetAttributes(attribute.Int(tracing.AttrResultCount, 0))
		tracing.SetStatus(span, nil)
		return nil, err
	}

	c.metrics.RecordChainExhausted("all_failed")
	err := &AllProvidersFailedError{Failures: failures}
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)
	c.logger.ErrorContext(ctx, "all providers failed", "failures", len(failures))
	return nil, err
}

// attempt calls one provider under its own deadline. The call runs in a
// goroutine so a provider that ignores its context still cannot hold the
// chain past the deadline.
func (c *Chain) attempt(ctx context.Context, priority int, p providers.Provider, req providers.Request) (*providers.Result, error) {
	name := p.GetName()
	timeout := p.GetConfig().Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	ctx, span := c.tracer.Start(ctx, "provider."+name)
	defer span.End()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *providers.Result
		err error
	}
	done := make(chan outcome, 1)

	start := time.Now()
	go func() {
		res, err := providers.Do(attemptCtx, p, req)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-attemptCtx.Done():
		out.err = attemptCtx.Err()
	}
	latency := time.Since(start)

	// Any error once the attempt deadline has passed is a timeout.
	if out.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		out.err = &providers.TimeoutError{Provider: name, Timeout: timeout}
	}

	result := classify(out.res, out.err)
	c.metrics.RecordProviderAttempt(name, result, latency)
	c.metrics.UpdateProviderHealth(name, p.IsHealthy())

	tracing.SetProviderAttributes(span, name, priority, result)
	if out.err != nil && !errors.Is(out.err, providers.ErrNotFound) {
		tracing.SetError(span, out.err)
	}

	c.logger.DebugContext(ctx, "provider attempt finished",
		"provider", name,
		"priority", priority,
		"outcome", result,
		"latency_ms", latency.Milliseconds(),
	)

	return out.res, out.err
}

func classify(res *providers.Result, err error) string {
	var timeoutErr *providers.TimeoutError
	switch {
	case err == nil && !res.Empty():
		return OutcomeSuccess
	case err == nil, errors.Is(err, providers.ErrNotFound):
		return OutcomeEmpty
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

// describe turns a provider error into a client-safe Failure. Upstream
// error text can embed request URLs (and with them API keys), so only
// the error class and status code are kept.
func describe(p providers.Provider, err error) Failure {
	f := Failure{Provider: p.GetName()}

	var (
		timeoutErr  *providers.TimeoutError
		authErr     *providers.AuthError
		rateErr     *providers.RateLimitError
		parseErr    *providers.ParseError
		configErr   *providers.ConfigError
		providerErr *providers.ProviderError
	)

	switch {
	case errors.As(err, &timeoutErr):
		f.Reason = fmt.Sprintf("timed out after %s", timeoutErr.Timeout)
		f.Timeout = true
	case errors.Is(err, context.DeadlineExceeded):
		f.Reason = "timed out"
		f.Timeout = true
	case errors.As(err, &authErr):
		f.Reason = "upstream rejected credentials"
	case errors.As(err, &rateErr):
		f.Reason = "upstream rate limit exceeded"
	case errors.As(err, &parseErr):
		f.Reason = "malformed upstream response"
	case errors.As(err, &configErr):
		f.Reason = "not configured"
	case errors.As(err, &providerErr) && providerErr.StatusCode > 0:
		f.Reason = fmt.Sprintf("upstream returned status %d", providerErr.StatusCode)
	case errors.As(err, &providerErr):
		f.Reason = "upstream unreachable"
	default:
		f.Reason = "unexpected error"
	}
	return f
}
