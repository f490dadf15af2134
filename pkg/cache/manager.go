package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"bookproxy/pkg/cache/storage"
	"bookproxy/pkg/providers"
	"bookproxy/pkg/telemetry/metrics"
	"bookproxy/pkg/telemetry/tracing"
)

// Defaults for Options fields left zero.
const (
	DefaultFreshnessThreshold = 24 * time.Hour
	DefaultRefreshTimeout     = 100 * time.Millisecond
	DefaultPromotionTimeout   = 2 * time.Second
	DefaultHotMaxTTL          = 24 * time.Hour
)

// Results recorded in metrics. Lookups use hit, miss, expired or error;
// writes and promotions use success or error.
const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultExpired = "expired"
	resultSuccess = "success"
	resultError   = "error"
)

// Options configures a Manager.
type Options struct {
	// Hot is the fast tier. Required.
	Hot storage.HotStore

	// Cold is the large tier. Nil disables it.
	Cold storage.ColdStore

	// FreshnessThreshold is the hot entry age after which a read also
	// checks the cold tier for a newer copy.
	FreshnessThreshold time.Duration

	// RefreshTimeout bounds that cold check.
	RefreshTimeout time.Duration

	// PromotionTimeout bounds a background cold-to-hot copy.
	PromotionTimeout time.Duration

	// HotMaxTTL caps the TTL of hot tier writes.
	HotMaxTTL time.Duration

	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger
}

// Manager is the two-tier cache. Reads try the hot tier, then the cold
// tier; cold hits are promoted into the hot tier in the background.
// Writes go to both tiers. A failing tier degrades to a miss for that
// tier and is never surfaced to callers of Get.
type Manager struct {
	hot  storage.HotStore
	cold storage.ColdStore

	freshness        time.Duration
	refreshTimeout   time.Duration
	promotionTimeout time.Duration
	hotMaxTTL        time.Duration

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	now func() time.Time
}

// NewManager creates a cache manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Hot == nil {
		return nil, fmt.Errorf("hot tier is required")
	}
	if opts.FreshnessThreshold <= 0 {
		opts.FreshnessThreshold = DefaultFreshnessThreshold
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.PromotionTimeout <= 0 {
		opts.PromotionTimeout = DefaultPromotionTimeout
	}
	if opts.HotMaxTTL <= 0 {
		opts.HotMaxTTL = DefaultHotMaxTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		hot:              opts.Hot,
		cold:             opts.Cold,
		freshness:        opts.FreshnessThreshold,
		refreshTimeout:   opts.RefreshTimeout,
		promotionTimeout: opts.PromotionTimeout,
		hotMaxTTL:        opts.HotMaxTTL,
		metrics:          opts.Metrics,
		tracer:           opts.Tracer,
		logger:           logger.With("component", "cache"),
		now:              time.Now,
	}, nil
}

// ColdEnabled reports whether a cold tier is configured.
func (m *Manager) ColdEnabled() bool {
	return m.cold != nil
}

// Get returns the entry for key, or ErrMiss when no tier has a live copy.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	ctx, span := m.tracer.Start(ctx, "cache.get")
	defer span.End()

	now := m.now()

	if entry := m.getHot(ctx, key, now); entry != nil {
		if m.cold != nil && entry.Age(now) > m.freshness {
			if newer := m.refreshFromCold(ctx, key, entry, now); newer != nil {
				entry = newer
			}
		}
		tracing.SetCacheAttributes(span, key, string(entry.Tier), entry.Age(now))
		return entry, nil
	}

	if m.cold == nil {
		tracing.SetCacheAttributes(span, key, "", 0)
		return nil, ErrMiss
	}

	entry := m.getCold(ctx, key, now)
	if entry == nil {
		tracing.SetCacheAttributes(span, key, "", 0)
		return nil, ErrMiss
	}

	m.promote(ctx, entry)
	tracing.SetCacheAttributes(span, key, string(entry.Tier), entry.Age(now))
	return entry, nil
}

// refreshFromCold races a cold read against refreshTimeout for a stale hot
// entry. A strictly newer cold entry is returned and promoted; anything
// else (slower, older, missing, failed) returns nil and the hot entry
// stands.
func (m *Manager) refreshFromCold(ctx context.Context, key string, hot *Entry, now time.Time) *Entry {
	ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	done := make(chan *Entry, 1)
	go func() {
		done <- m.getCold(ctx, key, now)
	}()

	var cold *Entry
	select {
	case cold = <-done:
	case <-ctx.Done():
		m.logger.DebugContext(ctx, "stale hot entry refresh timed out", "key", key)
		return nil
	}

	if cold == nil || !cold.CreatedAt.After(hot.CreatedAt) {
		return nil
	}

	m.promote(ctx, cold)
	return cold
}

func (m *Manager) getHot(ctx context.Context, key string, now time.Time) *Entry {
	data, ok, err := m.hot.Get(ctx, key)
	if err != nil {
		m.metrics.RecordCacheLookup(string(TierHot), resultError)
		m.logger.WarnContext(ctx, "hot tier read failed", "key", key, "error", err)
		return nil
	}
	if !ok {
		m.metrics.RecordCacheLookup(string(TierHot), resultMiss)
		return nil
	}

	entry, err := decodeEntry(data)
	if err != nil {
		m.metrics.RecordCacheLookup(string(TierHot), resultError)
		m.logger.WarnContext(ctx, "discarding undecodable hot entry", "key", key, "error", err)
		return nil
	}
	if entry.Expired(now) {
		m.metrics.RecordCacheLookup(string(TierHot), resultExpired)
		return nil
	}

	entry.Tier = TierHot
	m.metrics.RecordCacheLookup(string(TierHot), resultHit)
	return entry
}

func (m *Manager) getCold(ctx context.Context, key string, now time.Time) *Entry {
	blob, ok, err := m.cold.Get(ctx, key)
	if err != nil {
		m.metrics.RecordCacheLookup(string(TierCold), resultError)
		m.logger.WarnContext(ctx, "cold tier read failed", "key", key, "error", err)
		return nil
	}
	if !ok {
		m.metrics.RecordCacheLookup(string(TierCold), resultMiss)
		return nil
	}

	if exp, ok := blob.ExpiresAt(); ok && !now.Before(exp) {
		m.metrics.RecordCacheLookup(string(TierCold), resultExpired)
		return nil
	}
	if v := blob.Metadata[storage.MetaSchemaVersion]; v != "" && v != strconv.Itoa(SchemaVersion) {
		m.metrics.RecordCacheLookup(string(TierCold), resultMiss)
		return nil
	}

	entry, err := decodeEntry(blob.Data)
	if err != nil {
		m.metrics.RecordCacheLookup(string(TierCold), resultError)
		m.logger.WarnContext(ctx, "discarding undecodable cold entry", "key", key, "error", err)
		return nil
	}
	if entry.Expired(now) {
		m.metrics.RecordCacheLookup(string(TierCold), resultExpired)
		return nil
	}

	entry.Tier = TierCold
	m.metrics.RecordCacheLookup(string(TierCold), resultHit)
	return entry
}

// promote copies a cold entry into the hot tier without blocking the
// caller. The copy keeps the original CreatedAt so age is preserved.
// Failures are logged and counted, never returned.
func (m *Manager) promote(ctx context.Context, entry *Entry) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	// Detached from the request so the response can finish first.
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, m.promotionTimeout)
		defer cancel()

		ttl := m.hotTTL(entry.Remaining(m.now()))
		if entry.TTL > 0 && ttl <= 0 {
			return
		}

		data, err := encodeEntry(entry)
		if err == nil {
			err = m.hot.Put(ctx, entry.Key, data, ttl)
		}
		if err != nil {
			m.metrics.RecordCachePromotion(resultError)
			m.logger.WarnContext(ctx, "cache promotion failed", "key", entry.Key, "error", err)
			return
		}

		m.metrics.RecordCachePromotion(resultSuccess)
		m.updateHotSize()
		m.logger.DebugContext(ctx, "promoted cold entry to hot tier", "key", entry.Key, "ttl", ttl)
	}()
}

// Put stores result under key in both tiers concurrently. The hot copy
// gets min(ttl, HotMaxTTL); the cold copy keeps ttl. A single tier
// failure is logged and swallowed; an error is returned only when no tier
// accepted the write.
func (m *Manager) Put(ctx context.Context, key string, result *providers.Result, ttl time.Duration) error {
	ctx, span := m.tracer.Start(ctx, "cache.put")
	defer span.End()

	entry := &Entry{
		Key:           key,
		Result:        result,
		CreatedAt:     m.now().UTC(),
		TTL:           ttl,
		SchemaVersion: SchemaVersion,
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	var (
		wg      sync.WaitGroup
		hotErr  error
		coldErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		hotErr = m.hot.Put(ctx, key, data, m.hotTTL(ttl))
		m.recordWrite(ctx, TierHot, key, hotErr)
	}()

	if m.cold != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coldErr = m.cold.Put(ctx, key, data, coldMetadata(entry))
			m.recordWrite(ctx, TierCold, key, coldErr)
		}()
	}

	wg.Wait()
	m.updateHotSize()

	switch {
	case hotErr == nil:
		return nil
	case m.cold != nil && coldErr == nil:
		return nil
	default:
		err := errors.Join(hotErr, coldErr)
		tracing.SetError(span, err)
		return err
	}
}

func (m *Manager) recordWrite(ctx context.Context, tier Tier, key string, err error) {
	if err != nil {
		m.metrics.RecordCacheWrite(string(tier), resultError)
		m.logger.WarnContext(ctx, "cache write failed", "tier", tier, "key", key, "error", err)
		return
	}
	m.metrics.RecordCacheWrite(string(tier), resultSuccess)
}

// hotTTL caps ttl at the hot tier maximum.
func (m *Manager) hotTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > m.hotMaxTTL {
		return m.hotMaxTTL
	}
	return ttl
}

func (m *Manager) updateHotSize() {
	if sized, ok := m.hot.(interface{ Len() int }); ok {
		m.metrics.UpdateCacheSize(string(TierHot), sized.Len())
	}
}

// TierStatus values reported by Health.
const (
	StatusOK       = "ok"
	StatusDown     = "down"
	StatusDisabled = "disabled"
)

// Health reports the status of both tiers.
type Health struct {
	Hot  string `json:"hot"`
	Cold string `json:"cold"`
}

// Healthy reports whether every enabled tier is up.
func (h Health) Healthy() bool {
	return h.Hot == StatusOK && h.Cold != StatusDown
}

// Health pings both tiers.
func (m *Manager) Health(ctx context.Context) Health {
	h := Health{Hot: StatusOK, Cold: StatusDisabled}
	if err := m.PingHot(ctx); err != nil {
		h.Hot = StatusDown
	}
	if m.cold != nil {
		h.Cold = StatusOK
		if err := m.PingCold(ctx); err != nil {
			h.Cold = StatusDown
		}
	}
	return h
}

// PingHot pings the hot tier.
func (m *Manager) PingHot(ctx context.Context) error {
	return m.hot.Ping(ctx)
}

// PingCold pings the cold tier. It returns nil when the tier is disabled.
func (m *Manager) PingCold(ctx context.Context) error {
	if m.cold == nil {
		return nil
	}
	return m.cold.Ping(ctx)
}

// Prune removes expired cold entries and returns how many were deleted.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if m.cold == nil {
		return 0, nil
	}
	n, err := m.cold.Prune(ctx, m.now())
	if err != nil {
		return 0, err
	}
	m.metrics.RecordCacheEviction(string(TierCold), n)
	return n, nil
}

// Close stops accepting promotions and waits for in-flight ones. The
// stores themselves are owned by the caller.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

func encodeEntry(e *Entry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("schema version %d, want %d", e.SchemaVersion, SchemaVersion)
	}
	if e.Result == nil {
		return nil, fmt.Errorf("entry has no result")
	}
	return &e, nil
}

func coldMetadata(e *Entry) map[string]string {
	meta := map[string]string{
		storage.MetaCreatedAt:     e.CreatedAt.Format(time.RFC3339Nano),
		storage.MetaSchemaVersion: strconv.Itoa(e.SchemaVersion),
		storage.MetaTTLSeconds:    strconv.FormatInt(int64(e.TTL/time.Second), 10),
	}
	if exp := e.ExpiresAt(); !exp.IsZero() {
		meta[storage.MetaExpiresAt] = exp.UTC().Format(time.RFC3339Nano)
	}
	if e.Result != nil && e.Result.Provider != "" {
		meta[storage.MetaProvider] = e.Result.Provider
	}
	return meta
}
