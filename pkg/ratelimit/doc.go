// Package ratelimit enforces per-client hourly quotas.
//
// Clients are identified by a fingerprint, a truncated SHA-256 over the
// client IP, a user agent prefix and a connection token, so raw client
// identifiers are never stored. Each fingerprint has one fixed-window
// counter in the hot cache tier under "ratelimit:<fingerprint>", expiring
// when its window ends.
//
// Three tiers set the ceiling:
//
//	strict         20/h   missing, short or scripted user agents
//	default       100/h   other anonymous clients
//	authenticated 1000/h  a configured API key (X-API-Key or Bearer)
//
// Usage:
//
//	limiter := ratelimit.New(hot, ratelimit.QuotasFromConfig(cfg.RateLimit), collector, logger)
//	decision, err := limiter.Allow(ctx, ratelimit.ClientContextFromRequest(r, false))
package ratelimit
