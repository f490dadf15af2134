package handlers

import (
	"context"
	"time"

	"bookproxy/pkg/cache"
	"bookproxy/pkg/providerfactory"
	"bookproxy/pkg/providers"
	"bookproxy/pkg/ratelimit"
)

// Cache is the lookup handlers' view of the two-tier cache.
type Cache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Put(ctx context.Context, key string, result *providers.Result, ttl time.Duration) error
}

// Resolver runs a request through the provider chain.
type Resolver interface {
	Resolve(ctx context.Context, req providers.Request) (*providers.Result, error)
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, c ratelimit.ClientContext) (*ratelimit.Decision, error)
}

// CacheHealth reports the status of each cache tier.
type CacheHealth interface {
	Health(ctx context.Context) cache.Health
}

// ProviderStatuses lists the configured providers in chain order.
type ProviderStatuses interface {
	Statuses() []providerfactory.Status
}
