package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"bookproxy/pkg/config"
)

// CORSMiddleware answers browser preflights and decorates lookup responses
// with Access-Control headers from the server.cors section. Header values
// are joined once when the middleware is built.
//
// A listed origin is echoed back; a "*" entry allows any origin without
// credentials. Requests from other origins pass through undecorated so the
// browser enforces the policy.
func CORSMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	var (
		wildcard = slices.Contains(cfg.AllowedOrigins, "*")
		methods  = strings.Join(cfg.AllowedMethods, ", ")
		headers  = strings.Join(cfg.AllowedHeaders, ", ")
		exposed  = strings.Join(cfg.ExposedHeaders, ", ")
		maxAge   string
	)
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")

			allowed := true
			switch {
			case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				allowed = false
			}
			if allowed && exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				setIfNotEmpty(h, "Access-Control-Allow-Methods", methods)
				setIfNotEmpty(h, "Access-Control-Allow-Headers", headers)
				setIfNotEmpty(h, "Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
