package isbndb

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"bookproxy/pkg/providers"
)

// DefaultBaseURL is the ISBNdb v2 API endpoint.
const DefaultBaseURL = "https://api2.isbndb.com"

// Provider is the ISBNdb adapter. ISBNdb is a paid catalog; without an
// API key the provider reports itself unconfigured and is skipped.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new ISBNdb provider instance. A missing API key is
// not an error here so /health can report the provider as unconfigured.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "isbndb",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	p := &Provider{HTTPProvider: providers.NewHTTPProvider(config)}

	if config.APIKey == "" {
		slog.Warn("ISBNdb provider has no API key and will be skipped",
			"provider", config.Name,
		)
	} else {
		slog.Info("ISBNdb provider initialized",
			"provider", config.Name,
			"base_url", config.BaseURL,
		)
	}

	return p, nil
}

// Configured reports whether an API key is present.
func (p *Provider) Configured() bool {
	return p.GetConfig().APIKey != ""
}

// Search queries /books/{query}.
func (p *Provider) Search(ctx context.Context, req providers.Request) (*providers.Result, error) {
	if err := p.requireKey(); err != nil {
		return nil, err
	}
	q := req.Search

	params := url.Values{}
	params.Set("page", "1")
	params.Set("pageSize", strconv.Itoa(q.MaxResults))
	if !q.IncludeTranslations && q.LangRestrict != "" {
		params.Set("language", q.LangRestrict)
	}

	endpoint := p.GetConfig().BaseURL + "/books/" + url.PathEscape(q.Query) + "?" + params.Encode()
	body, err := p.DoJSON(ctx, endpoint, p.headers())
	if err != nil {
		// ISBNdb answers an unmatched search with 404.
		if errors.Is(err, providers.ErrNotFound) {
			return &providers.Result{Provider: p.GetName(), Volumes: []providers.Volume{}}, nil
		}
		return nil, err
	}

	res, err := transformSearch(p.GetName(), body)
	if err != nil {
		return nil, p.NewParseError(body, err)
	}
	return res, nil
}

// Lookup fetches /book/{isbn13}. A 404 is returned as ErrNotFound.
func (p *Provider) Lookup(ctx context.Context, req providers.Request) (*providers.Result, error) {
	if err := p.requireKey(); err != nil {
		return nil, err
	}

	endpoint := p.GetConfig().BaseURL + "/book/" + url.PathEscape(req.ISBN.ISBN13())
	body, err := p.DoJSON(ctx, endpoint, p.headers())
	if err != nil {
		return nil, err
	}

	res, err := transformLookup(p.GetName(), body)
	if err != nil {
		return nil, p.NewParseError(body, err)
	}
	return res, nil
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"Authorization": p.GetConfig().APIKey}
}

func (p *Provider) requireKey() error {
	if p.Configured() {
		return nil
	}
	return &providers.ConfigError{
		Provider: p.GetName(),
		Field:    "api_key",
		Message:  "API key is required for ISBNdb",
	}
}

var _ providers.Provider = (*Provider)(nil)
