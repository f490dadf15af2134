package providers

import (
	"log/slog"
	"sync"
	"time"
)

// UnhealthyThreshold is the number of consecutive failed lookups after
// which a provider is reported unhealthy.
const UnhealthyThreshold = 3

// healthTracker derives a provider's health from the outcome of real
// lookups. Nothing probes upstreams actively. A single success restores a
// provider, and a definitive not-found counts as a success.
type healthTracker struct {
	provider string
	now      func() time.Time

	mu    sync.RWMutex
	state ProviderHealth
}

func newHealthTracker(provider string, now func() time.Time) *healthTracker {
	t := now()
	return &healthTracker{
		provider: provider,
		now:      now,
		state: ProviderHealth{
			IsHealthy:             true,
			LastCheck:             t,
			LastSuccessfulRequest: t,
		},
	}
}

// attempt counts one HTTP exchange; retries make several per lookup.
func (h *healthTracker) attempt(ok bool) {
	h.mu.Lock()
	h.state.TotalRequests++
	if !ok {
		h.state.FailedRequests++
	}
	h.mu.Unlock()
}

// succeed records a lookup that got a definitive answer.
func (h *healthTracker) succeed() {
	h.mu.Lock()
	defer h.mu.Unlock()

	t := h.now()
	if !h.state.IsHealthy {
		slog.Info("provider recovered",
			"provider", h.provider,
			"failed_lookups", h.state.ConsecutiveFailures,
			"down_for", t.Sub(h.state.LastSuccessfulRequest).Round(time.Second),
		)
	}
	h.state.IsHealthy = true
	h.state.ConsecutiveFailures = 0
	h.state.LastError = nil
	h.state.LastCheck = t
	h.state.LastSuccessfulRequest = t
}

// fail records a lookup that ended without an answer.
func (h *healthTracker) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.LastCheck = h.now()
	h.state.LastError = err
	h.state.ConsecutiveFailures++

	if h.state.IsHealthy && h.state.ConsecutiveFailures >= UnhealthyThreshold {
		h.state.IsHealthy = false
		slog.Warn("provider unhealthy",
			"provider", h.provider,
			"failed_lookups", h.state.ConsecutiveFailures,
			"error", err,
		)
	}
}

func (h *healthTracker) healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.IsHealthy
}

func (h *healthTracker) snapshot() ProviderHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}
