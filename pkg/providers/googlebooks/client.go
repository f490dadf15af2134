package googlebooks

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"bookproxy/pkg/providers"
)

// DefaultBaseURL is the public Google Books API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Provider is the Google Books adapter. The API works without a key at a
// lower quota, so the provider is always considered configured.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Google Books provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "googlebooks",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	p := &Provider{HTTPProvider: providers.NewHTTPProvider(config)}

	slog.Info("Google Books provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"api_key", config.APIKey != "",
	)

	return p, nil
}

// Search runs a free-text volume search.
func (p *Provider) Search(ctx context.Context, req providers.Request) (*providers.Result, error) {
	q := req.Search

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("maxResults", strconv.Itoa(q.MaxResults))
	params.Set("orderBy", q.OrderBy)
	params.Set("printType", "books")
	if !q.IncludeTranslations && q.LangRestrict != "" {
		params.Set("langRestrict", q.LangRestrict)
	}

	return p.fetch(ctx, params)
}

// Lookup fetches a volume by ISBN using the isbn: search operator.
func (p *Provider) Lookup(ctx context.Context, req providers.Request) (*providers.Result, error) {
	params := url.Values{}
	params.Set("q", "isbn:"+req.ISBN.ISBN13())
	params.Set("maxResults", "1")
	params.Set("printType", "books")

	return p.fetch(ctx, params)
}

func (p *Provider) fetch(ctx context.Context, params url.Values) (*providers.Result, error) {
	cfg := p.GetConfig()
	if cfg.APIKey != "" {
		params.Set("key", cfg.APIKey)
	}

	body, err := p.DoJSON(ctx, cfg.BaseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := transformResponse(p.GetName(), body)
	if err != nil {
		return nil, p.NewParseError(body, err)
	}

	slog.Debug("google books request succeeded",
		"provider", p.GetName(),
		"items", len(res.Volumes),
		"total", res.TotalItems,
	)
	return res, nil
}

var _ providers.Provider = (*Provider)(nil)

