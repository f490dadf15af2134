// Package logging configures the process-wide log/slog logger.
//
// # Overview
//
//   - JSON or text output
//   - A slog.LevelVar so configuration reloads can change the level
//   - Request-scoped attributes (request_id, provider, cache_key,
//     fingerprint) copied from the context on every *Context call
//   - Redaction of upstream API keys, bearer tokens and client IPs
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "lookup served", "cache", "HIT-HOT")
//
// # Redaction
//
//   - https://www.googleapis.com/books/v1/volumes?q=dune&key=AIza... → key=***
//   - Authorization: Bearer abc → Bearer ***
//   - 203.0.113.7 → 203.*.*.*
//   - attributes named api_key, token, authorization, client_ip → first 4 chars + ***
//
// ISBNs and other digit runs are left intact.
package logging
