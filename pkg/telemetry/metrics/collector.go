package metrics

import (
	"sync"
	"time"

	"bookproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric the proxy exports. All Record*
// methods are safe on a nil *Collector and when metrics are disabled, so
// components can take an optional collector without branching.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics   *RequestMetrics
	providerMetrics  *ProviderMetrics
	cacheMetrics     *CacheMetrics
	rateLimitMetrics *RateLimitMetrics

	// Provider names come from configuration, but route labels come from
	// request paths; the limiter keeps unknown paths from exploding series.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a private registry with the
// Go runtime and process collectors is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.providerMetrics = NewProviderMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)
	c.rateLimitMetrics = NewRateLimitMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed HTTP request.
//
// Parameters:
//   - route: matched route ("/search", "/isbn", "/health", ...)
//   - status: HTTP status code
//   - cache: X-Cache value for lookups ("HIT-HOT", "HIT-COLD", "MISS"), empty otherwise
//   - duration: total handling time
func (c *Collector) RecordRequest(route string, status int, cache string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("route:" + route) {
		route = "other"
	}

	c.requestMetrics.RecordRequest(route, status, cache, duration)
}

// RecordProviderAttempt records one provider attempt inside the chain.
//
// Parameters:
//   - provider: configured provider name
//   - outcome: "success", "empty", "error" or "timeout"
//   - latency: attempt duration
func (c *Collector) RecordProviderAttempt(provider, outcome string, latency time.Duration) {
	if !c.enabled() {
		return
	}

	c.providerMetrics.RecordAttempt(provider, outcome, latency)
}

// RecordChainExhausted records a chain run that produced no result.
// reason is "not_found" or "all_failed".
func (c *Collector) RecordChainExhausted(reason string) {
	if !c.enabled() {
		return
	}

	c.providerMetrics.RecordExhausted(reason)
}

// UpdateProviderHealth updates the health gauge of a provider (1=healthy).
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}

	c.providerMetrics.UpdateHealth(provider, healthy)
}

// RecordCacheLookup records a tier read. result is "hit", "miss",
// "expired" or "error".
func (c *Collector) RecordCacheLookup(tier, result string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordLookup(tier, result)
}

// RecordCacheWrite records a tier write. result is "success" or "error".
func (c *Collector) RecordCacheWrite(tier, result string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordWrite(tier, result)
}

// RecordCachePromotion records a cold to hot promotion. result is "success"
// or "error".
func (c *Collector) RecordCachePromotion(result string) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordPromotion(result)
}

// UpdateCacheSize updates the current number of entries held by a tier.
func (c *Collector) UpdateCacheSize(tier string, size int) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.UpdateSize(tier, size)
}

// RecordCacheEviction records entries removed from a tier by capacity or expiry.
func (c *Collector) RecordCacheEviction(tier string, count int) {
	if !c.enabled() {
		return
	}

	c.cacheMetrics.RecordEviction(tier, count)
}

// RecordRateLimitDecision records a limiter decision for a quota tier.
func (c *Collector) RecordRateLimitDecision(tier string, allowed bool) {
	if !c.enabled() {
		return
	}

	c.rateLimitMetrics.RecordDecision(tier, allowed)
}

// RecordRateLimitStoreError records a counter store failure (request allowed).
func (c *Collector) RecordRateLimitStoreError() {
	if !c.enabled() {
		return
	}

	c.rateLimitMetrics.RecordStoreError()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
