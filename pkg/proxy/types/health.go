package types

import (
	"time"

	"bookproxy/pkg/providerfactory"
)

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthResponse is the body of GET /health. It reports configuration
// and passive health only; building it never calls an upstream provider.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Cache     CacheHealth              `json:"cache"`
	Providers []providerfactory.Status `json:"providers"`
}

// CacheHealth reports each tier as "ok", "down" or "disabled".
type CacheHealth struct {
	Hot  string `json:"hot"`
	Cold string `json:"cold"`
}
