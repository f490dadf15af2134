package metrics

import (
	"bookproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the two cache tiers.
//
// Metrics:
//   - bookproxy_cache_lookups_total: tier reads by result (hit, miss, expired, error)
//   - bookproxy_cache_writes_total: tier writes by result (ok, error)
//   - bookproxy_cache_promotions_total: cold to hot promotions by result
//   - bookproxy_cache_entries: current number of entries per tier
//   - bookproxy_cache_evictions_total: entries removed by capacity or expiry
//
// Hit ratio per tier:
//
//	rate(bookproxy_cache_lookups_total{tier="hot",result="hit"}[5m]) /
//	sum(rate(bookproxy_cache_lookups_total{tier="hot"}[5m]))
type CacheMetrics struct {
	lookupsTotal    *prometheus.CounterVec
	writesTotal     *prometheus.CounterVec
	promotionsTotal *prometheus.CounterVec
	entries         *prometheus.GaugeVec
	evictionsTotal  *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of cache tier reads by result",
			},
			[]string{"tier", "result"},
		),

		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_writes_total",
				Help:      "Total number of cache tier writes by result",
			},
			[]string{"tier", "result"},
		),

		promotionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_promotions_total",
				Help:      "Total number of cold to hot promotions by result",
			},
			[]string{"result"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_entries",
				Help:      "Current number of entries in a cache tier",
			},
			[]string{"tier"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_evictions_total",
				Help:      "Total number of cache entries evicted or pruned",
			},
			[]string{"tier"},
		),
	}

	registry.MustRegister(
		cm.lookupsTotal,
		cm.writesTotal,
		cm.promotionsTotal,
		cm.entries,
		cm.evictionsTotal,
	)

	return cm
}

// RecordLookup records a tier read.
func (cm *CacheMetrics) RecordLookup(tier, result string) {
	cm.lookupsTotal.WithLabelValues(tier, result).Inc()
}

// RecordWrite records a tier write.
func (cm *CacheMetrics) RecordWrite(tier, result string) {
	cm.writesTotal.WithLabelValues(tier, result).Inc()
}

// RecordPromotion records a cold to hot promotion.
func (cm *CacheMetrics) RecordPromotion(result string) {
	cm.promotionsTotal.WithLabelValues(result).Inc()
}

// UpdateSize updates the current size of a tier.
func (cm *CacheMetrics) UpdateSize(tier string, size int) {
	cm.entries.WithLabelValues(tier).Set(float64(size))
}

// RecordEviction records count entries removed from a tier.
func (cm *CacheMetrics) RecordEviction(tier string, count int) {
	if count > 0 {
		cm.evictionsTotal.WithLabelValues(tier).Add(float64(count))
	}
}
