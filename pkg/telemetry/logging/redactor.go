package logging

import (
	"regexp"
	"strings"

	"bookproxy/pkg/config"
)

// Redactor masks secrets and client identifiers in log output. Upstream
// API keys travel in query strings (Google Books) and headers (ISBNdb), and
// client IPs are only needed in hashed form for rate limiting.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternQueryKey    = "query_key"
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
	PatternIPv4        = "ipv4"
	PatternIPv6        = "ipv6"
)

// defaultPatterns are applied in order. Numeric identifiers such as ISBNs
// must survive redaction, so there is no generic digit-run pattern.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternQueryKey, `([?&](?:key|api_key|apikey)=)[^&\s"]+`, "${1}***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternAPIKey, `(?i)((?:x-)?api[-_]?key["']?\s*[:=]\s*["']?)[a-zA-Z0-9\-_.]+`, "${1}***"},
	{PatternIPv4, `\b(\d{1,3})\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`, "${1}.*.*.*"},
	{PatternIPv6, `\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`, "****:****:****:****:****:****:****:****"},
}

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = []string{
	"api_key", "api-key", "apikey", "secret", "token", "authorization", "password",
	"client_ip", "remote_addr",
}

// NewRedactor creates a new Redactor with default and custom patterns.
// Invalid custom patterns are skipped; config validation rejects them
// before they get here.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}

	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// IsSensitiveKey reports whether an attribute key names secret data.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
