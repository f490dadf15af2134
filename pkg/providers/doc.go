// Package providers implements a unified abstraction over upstream book
// metadata catalogs.
//
// # Overview
//
// Each upstream (Google Books, ISBNdb, Open Library) speaks its own URL
// scheme, authentication and JSON shape. Adapters in the sub-packages hide
// those differences behind the Provider interface and normalize every
// answer into the canonical Result and Volume types, so the chain, the
// cache and the HTTP handlers never see a provider-specific payload.
//
// # Architecture
//
//  1. Provider Interface - Search and Lookup returning *Result
//  2. Base HTTP Provider - pooling, throttling, retries, passive health
//  3. Adapters - googlebooks, isbndb, openlibrary (provider.go + transform.go)
//  4. Provider Factory - builds adapters from configuration (pkg/providerfactory)
//
// # Basic Usage
//
//	p := googlebooks.NewProvider(providers.ProviderConfig{
//	    Name:    "googlebooks",
//	    BaseURL: "https://www.googleapis.com/books/v1",
//	    Timeout: 3 * time.Second,
//	})
//	defer p.Close()
//
//	q, _ := validate.ParseSearch(url.Values{"q": {"dune"}})
//	res, err := p.Search(ctx, providers.SearchRequest(q))
//
// # Error Handling
//
// The package defines specific error types for common failure scenarios:
//
//   - ProviderError: General provider errors; 404 wraps ErrNotFound
//   - AuthError: Authentication failures (HTTP 401/403)
//   - RateLimitError: Upstream rate limit exceeded (HTTP 429)
//   - TimeoutError: Per-attempt deadline exceeded
//   - ParseError: Response envelope could not be decoded
//   - ConfigError: Invalid or incomplete provider configuration
//
// ErrNotFound and a Result with no volumes are definitive empty answers.
// Every other error is a failure the chain records before moving on.
//
// # Health
//
// Health is passive. Each logical request updates ProviderHealth; three
// consecutive failures mark the provider unhealthy and the next success
// restores it. Nothing probes upstreams on a timer.
//
// # Thread Safety
//
// All provider implementations are safe for concurrent use.
package providers
