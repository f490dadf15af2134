package types

// Request and response headers.
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderCache              = "X-Cache"
	HeaderCacheAge           = "X-Cache-Age"
	HeaderProvider           = "X-Provider"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// X-Cache values.
const (
	CacheHitHot  = "HIT-HOT"
	CacheHitCold = "HIT-COLD"
	CacheMiss    = "MISS"
)

// Query parameters.
const (
	ParamQuery        = "q"
	ParamMaxResults   = "maxResults"
	ParamOrderBy      = "orderBy"
	ParamLangRestrict = "langRestrict"
	ParamISBN         = "isbn"
)
