package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"bookproxy/pkg/cache/storage"
	"bookproxy/pkg/config"
	"bookproxy/pkg/telemetry/metrics"
)

// KeyPrefix prefixes counter keys in the hot store.
const KeyPrefix = "ratelimit:"

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Tier      Tier
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is the time until the window resets. Set (>= 1s) only
	// when the request was denied.
	RetryAfter time.Duration

	// Degraded is true when the counter store failed and the request was
	// allowed without being counted.
	Degraded bool
}

// counter is the stored window state.
type counter struct {
	Count       int   `json:"count"`
	WindowStart int64 `json:"window_start"` // unix milliseconds
}

// Limiter enforces fixed-window quotas per client fingerprint. Counters
// live in the hot cache tier; read-modify-write is not atomic across
// instances, so limiting is approximate and a burst at a window boundary
// can exceed the ceiling.
type Limiter struct {
	store   storage.HotStore
	quotas  atomic.Pointer[Quotas]
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a limiter over store. collector may be nil.
func New(store storage.HotStore, quotas Quotas, collector *metrics.Collector, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}

	l := &Limiter{
		store:   store,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
	l.SetQuotas(quotas)
	return l
}

// QuotasFromConfig converts the rate limit configuration.
func QuotasFromConfig(cfg config.RateLimitConfig) Quotas {
	return Quotas{
		Window:        cfg.Window,
		Strict:        cfg.StrictLimit,
		Default:       cfg.DefaultLimit,
		Authenticated: cfg.AuthenticatedLimit,
		APIKeys:       append([]string(nil), cfg.APIKeys...),
	}
}

// SetQuotas atomically replaces the quotas. Counters already stored keep
// their window start.
func (l *Limiter) SetQuotas(q Quotas) {
	if q.Window <= 0 {
		q.Window = config.DefaultRateLimitWindow
	}
	l.quotas.Store(&q)
}

// Quotas returns the quotas currently in effect.
func (l *Limiter) Quotas() Quotas {
	return *l.quotas.Load()
}

// Allow counts one request from c and decides whether it may proceed.
// A counter store failure allows the request (fail open) and is logged;
// the only error returned is ctx's.
func (l *Limiter) Allow(ctx context.Context, c ClientContext) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := l.quotas.Load()
	tier := q.Classify(c)
	limit := q.Limit(tier)
	key := KeyPrefix + Fingerprint(c)
	now := l.now()

	cnt, err := l.load(ctx, key)
	if err != nil {
		return l.failOpen(ctx, tier, limit, now.Add(q.Window), err)
	}

	windowStart := time.UnixMilli(cnt.WindowStart)
	if cnt.WindowStart == 0 || !now.Before(windowStart.Add(q.Window)) {
		cnt = counter{WindowStart: now.UnixMilli()}
		windowStart = time.UnixMilli(cnt.WindowStart)
	}

	resetAt := windowStart.Add(q.Window)
	remainingWindow := resetAt.Sub(now)

	if cnt.Count >= limit {
		retryAfter := remainingWindow.Round(time.Second)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}

		l.metrics.RecordRateLimitDecision(string(tier), false)
		return &Decision{
			Allowed:    false,
			Tier:       tier,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter,
		}, nil
	}

	cnt.Count++
	if err := l.save(ctx, key, cnt, remainingWindow); err != nil {
		return l.failOpen(ctx, tier, limit, resetAt, err)
	}

	l.metrics.RecordRateLimitDecision(string(tier), true)
	return &Decision{
		Allowed:   true,
		Tier:      tier,
		Limit:     limit,
		Remaining: limit - cnt.Count,
		ResetAt:   resetAt,
	}, nil
}

func (l *Limiter) failOpen(ctx context.Context, tier Tier, limit int, resetAt time.Time, err error) (*Decision, error) {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, ctxErr
	}

	l.logger.WarnContext(ctx, "rate limit store unavailable, allowing request",
		"tier", string(tier),
		"error", err,
	)
	l.metrics.RecordRateLimitStoreError()
	l.metrics.RecordRateLimitDecision(string(tier), true)

	return &Decision{
		Allowed:   true,
		Tier:      tier,
		Limit:     limit,
		Remaining: limit,
		ResetAt:   resetAt,
		Degraded:  true,
	}, nil
}

func (l *Limiter) load(ctx context.Context, key string) (counter, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return counter{}, fmt.Errorf("failed to read counter: %w", err)
	}
	if !ok {
		return counter{}, nil
	}

	var c counter
	if err := json.Unmarshal(raw, &c); err != nil {
		// A corrupt counter starts a fresh window rather than blocking the client.
		l.logger.WarnContext(ctx, "discarding corrupt rate limit counter", "error", err)
		return counter{}, nil
	}
	return c, nil
}

func (l *Limiter) save(ctx context.Context, key string, c counter, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode counter: %w", err)
	}
	if err := l.store.Put(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("failed to write counter: %w", err)
	}
	return nil
}
