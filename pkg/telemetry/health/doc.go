// Package health provides liveness, readiness and version endpoints.
//
// Liveness only reports that the process is up. Readiness runs the
// registered component checks concurrently, each bounded by the configured
// check timeout:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("cache_hot", true, manager.PingHot)
//	checker.RegisterCheck("cache_cold", false, manager.PingCold)
//	mux.Handle("/ready", checker.ReadinessHandler())
//
// The richer GET /health diagnostics document (cache tiers and provider
// configuration) is served by the proxy handlers, not by this package.
package health
