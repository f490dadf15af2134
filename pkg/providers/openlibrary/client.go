package openlibrary

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"bookproxy/pkg/providers"
	"bookproxy/pkg/validate"
)

// DefaultBaseURL is the Open Library endpoint.
const DefaultBaseURL = "https://openlibrary.org"

// searchFields limits the search.json payload to what the transform reads.
const searchFields = "key,title,subtitle,author_name,publisher,first_publish_year,publish_date,isbn,cover_i,subject,number_of_pages_median,language,first_sentence"

// Provider is the Open Library adapter. It needs no credentials.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Open Library provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openlibrary",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	p := &Provider{HTTPProvider: providers.NewHTTPProvider(config)}

	slog.Info("Open Library provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Search queries /search.json.
func (p *Provider) Search(ctx context.Context, req providers.Request) (*providers.Result, error) {
	q := req.Search

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("limit", strconv.Itoa(q.MaxResults))
	params.Set("fields", searchFields)
	if q.OrderBy == validate.OrderNewest {
		params.Set("sort", "new")
	}
	if !q.IncludeTranslations && q.LangRestrict != "" {
		if code := marcCode(q.LangRestrict); code != "" {
			params.Set("lang", q.LangRestrict)
			params.Set("language", code)
		}
	}

	return p.fetch(ctx, params, "")
}

// Lookup searches by ISBN. Open Library indexes both ISBN forms, so the
// ISBN-13 is used for the query.
func (p *Provider) Lookup(ctx context.Context, req providers.Request) (*providers.Result, error) {
	isbn13 := req.ISBN.ISBN13()

	params := url.Values{}
	params.Set("q", "isbn:"+isbn13)
	params.Set("limit", "1")
	params.Set("fields", searchFields)

	return p.fetch(ctx, params, isbn13)
}

func (p *Provider) fetch(ctx context.Context, params url.Values, preferISBN string) (*providers.Result, error) {
	body, err := p.DoJSON(ctx, p.GetConfig().BaseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := transformSearch(p.GetName(), body, preferISBN)
	if err != nil {
		return nil, p.NewParseError(body, err)
	}

	slog.Debug("open library request succeeded",
		"provider", p.GetName(),
		"items", len(res.Volumes),
	)
	return res, nil
}

var _ providers.Provider = (*Provider)(nil)
