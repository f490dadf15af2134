package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ProviderKey is the context key for the upstream provider name.
	ProviderKey contextKey = "provider"

	// CacheKeyKey is the context key for the cache key of a lookup.
	CacheKeyKey contextKey = "cache_key"

	// FingerprintKey is the context key for the rate limit fingerprint.
	FingerprintKey contextKey = "fingerprint"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithProvider adds a provider name to the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// GetProvider retrieves the provider name from the context.
func GetProvider(ctx context.Context) string {
	if provider, ok := ctx.Value(ProviderKey).(string); ok {
		return provider
	}
	return ""
}

// WithCacheKey adds the lookup cache key to the context.
func WithCacheKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, CacheKeyKey, key)
}

// GetCacheKey retrieves the lookup cache key from the context.
func GetCacheKey(ctx context.Context) string {
	if key, ok := ctx.Value(CacheKeyKey).(string); ok {
		return key
	}
	return ""
}

// WithFingerprint adds the client fingerprint to the context.
func WithFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, FingerprintKey, fingerprint)
}

// GetFingerprint retrieves the client fingerprint from the context.
func GetFingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(FingerprintKey).(string); ok {
		return fp
	}
	return ""
}

// contextAttrs extracts the request-scoped fields set on ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), v))
	}
	if v := GetProvider(ctx); v != "" {
		attrs = append(attrs, slog.String(string(ProviderKey), v))
	}
	if v := GetCacheKey(ctx); v != "" {
		attrs = append(attrs, slog.String(string(CacheKeyKey), v))
	}
	if v := GetFingerprint(ctx); v != "" {
		attrs = append(attrs, slog.String(string(FingerprintKey), v))
	}
	return attrs
}
