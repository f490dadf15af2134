// Package tracing provides OpenTelemetry distributed tracing for the book proxy.
//
// Spans are exported over OTLP gRPC. A request produces a server span from
// HTTPMiddleware, with child spans for the cache lookup and each provider
// attempt in the chain. Outgoing provider requests carry W3C trace context.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: "localhost:4317"
//	    service_name: "bookproxy"
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "chain.search")
//	defer span.End()
//	tracing.SetProviderAttributes(span, "googlebooks", 1, "success")
//
// A disabled or nil Tracer returns noop spans.
package tracing
