package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampler strategies accepted in telemetry.tracing.sampler.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// attrHTTPTarget is set by HTTPMiddleware at span start so the sampler can
// see the request path.
const attrHTTPTarget = attribute.Key("http.target")

// createSampler builds the root sampler for strategy. Root spans for any of
// skipPaths are dropped regardless of strategy; child spans follow their
// parent's decision.
func createSampler(strategy string, ratio float64, skipPaths []string) (sdktrace.Sampler, error) {
	var root sdktrace.Sampler
	switch strategy {
	case SamplerAlways:
		root = sdktrace.AlwaysSample()
	case SamplerNever:
		root = sdktrace.NeverSample()
	case SamplerRatio, "":
		if ratio < 0 || ratio > 1 {
			return nil, fmt.Errorf("sample ratio %v outside [0, 1]", ratio)
		}
		root = sdktrace.TraceIDRatioBased(ratio)
	default:
		return nil, fmt.Errorf("unknown sampler %q", strategy)
	}

	if len(skipPaths) > 0 {
		skip := make(map[string]struct{}, len(skipPaths))
		for _, p := range skipPaths {
			skip[p] = struct{}{}
		}
		root = probeFilter{next: root, skip: skip}
	}
	return sdktrace.ParentBased(root), nil
}

// probeFilter drops spans for health and scrape endpoints, which would
// otherwise dominate traces at any meaningful sample ratio.
type probeFilter struct {
	next sdktrace.Sampler
	skip map[string]struct{}
}

func (f probeFilter) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	for _, kv := range p.Attributes {
		if kv.Key != attrHTTPTarget {
			continue
		}
		if _, ok := f.skip[kv.Value.AsString()]; ok {
			return sdktrace.SamplingResult{Decision: sdktrace.Drop}
		}
		break
	}
	return f.next.ShouldSample(p)
}

func (f probeFilter) Description() string {
	return fmt.Sprintf("ProbeFilter{%s}", f.next.Description())
}
