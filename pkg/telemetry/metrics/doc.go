// Package metrics provides Prometheus metrics collection for the book proxy.
//
// # Metrics Categories
//
//   - Request Metrics: request count and duration by route, lookup outcomes by cache tier
//   - Provider Metrics: attempts by outcome, latency, health, exhausted chain runs
//   - Cache Metrics: tier reads and writes, promotions, sizes, evictions
//   - Rate Limit Metrics: decisions by quota tier, counter store failures
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordRequest("/isbn", 200, "HIT-COLD", 12*time.Millisecond)
//	collector.RecordProviderAttempt("googlebooks", "timeout", 3*time.Second)
//	collector.RecordCachePromotion("success")
//	collector.RecordRateLimitDecision("default", true)
//
// Every Record method is a no-op on a nil collector or when metrics are
// disabled.
//
// # Prometheus Endpoint
//
// All metrics are exposed through Collector.Handler, mounted at the
// configured path (default /metrics).
//
// # Cardinality
//
// Provider names and tiers are bounded by configuration. Route labels are
// passed through a CardinalityLimiter; routes beyond the limit are recorded
// as "other".
package metrics
