package metrics

import (
	"time"

	"bookproxy/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks upstream provider attempts.
//
// Metrics:
//   - bookproxy_provider_attempts_total: attempts by provider and outcome
//   - bookproxy_provider_latency_seconds: attempt latency by provider
//   - bookproxy_provider_health: 1 if the provider's last attempts succeeded
//   - bookproxy_chain_exhausted_total: chain runs without a result by reason
type ProviderMetrics struct {
	attemptsTotal  *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	health         *prometheus.GaugeVec
	exhaustedTotal *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_attempts_total",
				Help:      "Total number of provider attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_latency_seconds",
				Help:      "Latency of provider attempts in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8},
			},
			[]string{"provider"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_health",
				Help:      "Provider health (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		exhaustedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "chain_exhausted_total",
				Help:      "Total number of provider chain runs that produced no result",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		pm.attemptsTotal,
		pm.latency,
		pm.health,
		pm.exhaustedTotal,
	)

	return pm
}

// RecordAttempt records one provider attempt.
func (pm *ProviderMetrics) RecordAttempt(provider, outcome string, latency time.Duration) {
	pm.attemptsTotal.WithLabelValues(provider, outcome).Inc()
	pm.latency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordExhausted records a chain run without a result.
func (pm *ProviderMetrics) RecordExhausted(reason string) {
	pm.exhaustedTotal.WithLabelValues(reason).Inc()
}

// UpdateHealth sets the provider health gauge.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(provider).Set(value)
}
