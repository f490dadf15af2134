// Package telemetry groups the observability packages of the book proxy.
//
// # Components
//
//   - logging: log/slog setup with API key and client address redaction
//   - metrics: Prometheus collectors for requests, providers, cache and rate limits
//   - tracing: OpenTelemetry spans for lookups, the provider chain and cache tiers
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "chain.resolve")
//	defer span.End()
//
// # Redaction
//
// With telemetry.logging.redact_pii enabled (the default), log output never
// carries upstream API keys or client IP addresses:
//
//   - key=AIza... query parameters → key=***
//   - Bearer tokens and X-API-Key values → ***
//   - IPv4 addresses → 192.*.*.*
package telemetry
