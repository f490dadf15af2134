package ratelimit

import (
	"crypto/subtle"
	"strings"
	"time"
)

// Tier is a quota class.
type Tier string

const (
	// TierStrict applies to missing, very short or automation user agents.
	TierStrict Tier = "strict"

	// TierDefault applies to ordinary anonymous clients.
	TierDefault Tier = "default"

	// TierAuthenticated applies to clients presenting a configured API key.
	TierAuthenticated Tier = "authenticated"
)

// minUserAgentLen is the shortest user agent that avoids the strict tier.
const minUserAgentLen = 10

// automationSignatures are lowercase user agent fragments of scripted clients.
var automationSignatures = []string{
	"curl", "wget", "python-requests", "python-urllib", "aiohttp", "httpx",
	"go-http-client", "okhttp", "java/", "libwww-perl", "node-fetch", "axios",
	"scrapy", "httpie", "postman", "bot", "spider", "crawler", "scraper",
	"headless", "phantomjs", "selenium", "puppeteer", "playwright",
}

// Quotas are the per-window ceilings and the accepted API keys.
type Quotas struct {
	Window        time.Duration
	Strict        int
	Default       int
	Authenticated int
	APIKeys       []string
}

// Limit returns the ceiling for tier.
func (q *Quotas) Limit(tier Tier) int {
	switch tier {
	case TierStrict:
		return q.Strict
	case TierAuthenticated:
		return q.Authenticated
	default:
		return q.Default
	}
}

// Classify picks the quota tier for a client. A valid API key wins over
// user agent heuristics; an unknown key is ignored.
func (q *Quotas) Classify(c ClientContext) Tier {
	if c.APIKey != "" && q.validKey(c.APIKey) {
		return TierAuthenticated
	}
	if isLowQualityUserAgent(c.UserAgent) {
		return TierStrict
	}
	return TierDefault
}

// validKey compares against every configured key in constant time.
func (q *Quotas) validKey(key string) bool {
	match := 0
	for _, k := range q.APIKeys {
		match |= subtle.ConstantTimeCompare([]byte(k), []byte(key))
	}
	return match == 1
}

func isLowQualityUserAgent(ua string) bool {
	ua = strings.TrimSpace(ua)
	if len(ua) < minUserAgentLen {
		return true
	}

	lower := strings.ToLower(ua)
	for _, sig := range automationSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
