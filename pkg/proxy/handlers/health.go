package handlers

import (
	"net/http"
	"time"

	"bookproxy/pkg/cache"
	"bookproxy/pkg/proxy"
	"bookproxy/pkg/proxy/types"
)

// HealthHandler serves GET /health. It reports cache tier status and the
// provider chain's configuration and passive health without calling any
// upstream. It always answers 200 so edge monitors can read the body;
// "degraded" signals a problem.
type HealthHandler struct {
	cache     CacheHealth
	providers ProviderStatuses
	version   string
	now       func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(c CacheHealth, p ProviderStatuses, version string) *HealthHandler {
	return &HealthHandler{
		cache:     c,
		providers: p,
		version:   version,
		now:       time.Now,
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	tiers := h.cache.Health(r.Context())
	statuses := h.providers.Statuses()

	configured := 0
	for _, s := range statuses {
		if s.Configured {
			configured++
		}
	}

	status := types.HealthOK
	if tiers.Hot == cache.StatusDown || tiers.Cold == cache.StatusDown || configured == 0 {
		status = types.HealthDegraded
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &types.HealthResponse{
		Status:    status,
		Version:   h.version,
		Timestamp: h.now().UTC(),
		Cache:     types.CacheHealth{Hot: tiers.Hot, Cold: tiers.Cold},
		Providers: statuses,
	})
}
