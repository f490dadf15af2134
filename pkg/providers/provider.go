package providers

import "context"

// Provider is the interface every book metadata adapter implements. It
// hides upstream URL shapes, authentication and payload formats behind
// two lookups that return the canonical Result.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must return promptly once the context is done.
//
// Example usage:
//
//	provider, err := providerfactory.NewFactory().CreateProvider(cfg)
//	if err != nil {
//	    return err
//	}
//
//	res, err := provider.Search(ctx, query)
//	if errors.Is(err, providers.ErrNotFound) {
//	    // definitive empty answer
//	}
type Provider interface {
	// Search runs a free-text query. A result with zero volumes or an
	// error wrapping ErrNotFound is a definitive empty answer.
	Search(ctx context.Context, q Request) (*Result, error)

	// Lookup fetches the volume for a single ISBN.
	Lookup(ctx context.Context, q Request) (*Result, error)

	// GetName returns the provider's configured name (e.g., "googlebooks").
	GetName() string

	// GetType returns the adapter type (googlebooks, isbndb, openlibrary).
	GetType() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// Configured reports whether the provider has every credential it
	// needs. Unconfigured providers are skipped by the chain.
	Configured() bool

	// IsHealthy returns the current passive health status.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections.
	Close() error
}

// Do dispatches a request to Search or Lookup according to its kind.
func Do(ctx context.Context, p Provider, req Request) (*Result, error) {
	switch req.Kind {
	case KindSearch:
		if req.Search == nil {
			return nil, &ValidationError{Field: "search", Message: "search query is required"}
		}
		return p.Search(ctx, req)
	case KindISBN:
		if req.ISBN == "" {
			return nil, &ValidationError{Field: "isbn", Message: "isbn is required"}
		}
		return p.Lookup(ctx, req)
	default:
		return nil, &ValidationError{Field: "kind", Message: "unknown request kind " + string(req.Kind)}
	}
}
