package tracing

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Custom attribute keys use the "bookproxy.*" namespace. HTTP attributes
// follow OpenTelemetry semantic conventions.
const (
	// Request attributes
	AttrRequestID   = "bookproxy.request_id"
	AttrRequestKind = "bookproxy.request.kind"
	AttrISBN        = "bookproxy.isbn"
	AttrQueryLength = "bookproxy.query.length"

	// Provider attributes
	AttrProvider        = "bookproxy.provider"
	AttrProviderAttempt = "bookproxy.provider.attempt"
	AttrProviderOutcome = "bookproxy.provider.outcome"
	AttrResultCount     = "bookproxy.result.count"

	// Cache attributes
	AttrCacheKey    = "bookproxy.cache.key"
	AttrCacheTier   = "bookproxy.cache.tier"
	AttrCacheHit    = "bookproxy.cache.hit"
	AttrCacheAgeSec = "bookproxy.cache.age_seconds"

	// Rate limit attributes
	AttrRateLimitTier      = "bookproxy.ratelimit.tier"
	AttrRateLimitRemaining = "bookproxy.ratelimit.remaining"

	// Error attributes
	AttrErrorType    = "bookproxy.error.type"
	AttrErrorMessage = "error.message"
)

// SetRequestAttributes sets request identification attributes on a span.
// kind is "search" or "isbn".
func SetRequestAttributes(span trace.Span, requestID, kind string) {
	attrs := []attribute.KeyValue{attribute.String(AttrRequestKind, kind)}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetProviderAttributes records one provider attempt on a span.
//
// Example:
//
//	SetProviderAttributes(span, "openlibrary", 3, "success")
func SetProviderAttributes(span trace.Span, provider string, attempt int, outcome string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.Int(AttrProviderAttempt, attempt),
		attribute.String(AttrProviderOutcome, outcome),
	)
}

// SetCacheAttributes sets cache lookup attributes. tier is "hot", "cold"
// or empty on a miss.
func SetCacheAttributes(span trace.Span, key, tier string, age time.Duration) {
	hit := tier != ""
	attrs := []attribute.KeyValue{
		attribute.String(AttrCacheKey, key),
		attribute.Bool(AttrCacheHit, hit),
	}
	if hit {
		attrs = append(attrs,
			attribute.String(AttrCacheTier, tier),
			attribute.Int64(AttrCacheAgeSec, int64(age/time.Second)),
		)
	}
	span.SetAttributes(attrs...)
}

// SetRateLimitAttributes sets the quota tier and remaining budget.
func SetRateLimitAttributes(span trace.Span, tier string, remaining int) {
	span.SetAttributes(
		attribute.String(AttrRateLimitTier, tier),
		attribute.Int(AttrRateLimitRemaining, remaining),
	)
}

// SetErrorAttributes marks the span as failed with a classified error type
// such as "not_found", "all_providers_failed" or "timeout".
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

// AddEvent adds a named event with optional attributes to a span.
//
// Example:
//
//	AddEvent(span, "cache.promoted", attribute.String(AttrCacheKey, key))
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetError records err on span without changing its status.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.Bool("error", true), attribute.String(AttrErrorMessage, err.Error()))
	span.RecordError(err)
}

// SetStatus sets Ok for a nil err and Error otherwise.
func SetStatus(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.SetStatus(codes.Error, err.Error())
}
