package ratelimit

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// userAgentPrefixLen bounds how much of the user agent enters the fingerprint.
const userAgentPrefixLen = 64

// ClientContext is the request metadata the limiter needs. The HTTP layer
// builds it once per request; the limiter never reads the request itself.
type ClientContext struct {
	IP        string
	UserAgent string

	// ConnToken identifies the connection shape: TLS version and cipher
	// suite when TLS is terminated here, otherwise protocol and
	// Accept-Language.
	ConnToken string

	// APIKey is the presented pre-shared key, if any.
	APIKey string
}

// ClientContextFromRequest extracts a ClientContext from r. Forwarded
// headers are only honored when trustForwarded is set, i.e. when the
// service runs behind a proxy that overwrites them.
func ClientContextFromRequest(r *http.Request, trustForwarded bool) ClientContext {
	return ClientContext{
		IP:        clientIP(r, trustForwarded),
		UserAgent: r.UserAgent(),
		ConnToken: connToken(r),
		APIKey:    apiKey(r),
	}
}

// Fingerprint hashes the client identity. The raw IP and user agent are
// never stored.
func Fingerprint(c ClientContext) string {
	ua := c.UserAgent
	if len(ua) > userAgentPrefixLen {
		ua = ua[:userAgentPrefixLen]
	}

	sum := sha256.Sum256([]byte(c.IP + "|" + ua + "|" + c.ConnToken))
	return hex.EncodeToString(sum[:])[:32]
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func connToken(r *http.Request) string {
	if r.TLS != nil {
		return tls.VersionName(r.TLS.Version) + "/" + tls.CipherSuiteName(r.TLS.CipherSuite)
	}
	return r.Proto + "/" + r.Header.Get("Accept-Language")
}

func apiKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}

	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
