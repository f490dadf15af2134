package metrics

import (
	"bookproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RateLimitMetrics tracks per-client quota decisions.
//
// Metrics:
//   - bookproxy_ratelimit_decisions_total: decisions by tier and outcome
//   - bookproxy_ratelimit_store_errors_total: counter store failures (fail open)
type RateLimitMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	storeErrorsTotal prometheus.Counter
}

// NewRateLimitMetrics creates and registers rate limit metrics with the provided registry.
func NewRateLimitMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RateLimitMetrics {
	rm := &RateLimitMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ratelimit_decisions_total",
				Help:      "Total number of rate limit decisions by tier and outcome",
			},
			[]string{"tier", "decision"},
		),

		storeErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "ratelimit_store_errors_total",
				Help:      "Total number of rate limit counter store failures",
			},
		),
	}

	registry.MustRegister(rm.decisionsTotal, rm.storeErrorsTotal)

	return rm
}

// RecordDecision records an allow or deny decision.
func (rm *RateLimitMetrics) RecordDecision(tier string, allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	rm.decisionsTotal.WithLabelValues(tier, decision).Inc()
}

// RecordStoreError records a counter store failure.
func (rm *RateLimitMetrics) RecordStoreError() {
	rm.storeErrorsTotal.Inc()
}
