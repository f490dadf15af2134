// Package handlers implements the lookup API endpoints.
//
//	GET /search?q=&maxResults=&orderBy=&langRestrict=
//	GET /isbn?isbn=
//	GET /health
//
// LookupHandler runs every lookup through the same flow: parameters are
// validated, the client is rate limited, the cache is consulted and only
// on a miss is the provider chain run. Identical concurrent misses share
// one chain run. The result is cached and returned in the Google Books
// volume format with these headers:
//
//	X-Cache: HIT-HOT | HIT-COLD | MISS
//	X-Cache-Age: 3600            (hits only, seconds)
//	X-Provider: googlebooks
//	X-RateLimit-Limit / -Remaining / -Reset
//
// Dependencies are interfaces (Cache, Resolver, Limiter) so tests can
// swap in fakes; production wiring passes *cache.Manager, *chain.Chain and
// *ratelimit.Limiter.
package handlers
