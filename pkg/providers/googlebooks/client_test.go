package googlebooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"bookproxy/pkg/providers"
	"bookproxy/pkg/validate"
)

const duneResponse = `{
  "kind": "books#volumes",
  "totalItems": 812,
  "items": [
    {
      "id": "B1hSG45JCX4C",
      "volumeInfo": {
        "title": "Dune",
        "authors": ["Frank Herbert", "Frank Herbert", " "],
        "publisher": "Penguin",
        "publishedDate": "2005-08-02",
        "industryIdentifiers": [
          {"type": "ISBN_13", "identifier": "9780441013593"},
          {"type": "ISBN_10", "identifier": "0441013597"}
        ],
        "pageCount": 896,
        "categories": ["Fiction"],
        "imageLinks": {
          "smallThumbnail": "http://books.google.com/books/content?id=B1hSG45JCX4C&zoom=5",
          "thumbnail": "http://books.google.com/books/content?id=B1hSG45JCX4C&zoom=1"
        },
        "language": "en",
        "infoLink": "http://books.google.com/books?id=B1hSG45JCX4C"
      }
    },
    {"id": "broken", "volumeInfo": "not an object"},
    {"id": "untitled", "volumeInfo": {"authors": ["Nobody"]}},
    {
      "id": "ydQiDQAAQBAJ",
      "volumeInfo": {"title": "Dune Messiah", "subtitle": "Book Two"}
    }
  ]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewProvider(providers.ProviderConfig{
		Name:    "googlebooks",
		Type:    "googlebooks",
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p
}

func TestProvider_Search(t *testing.T) {
	var gotQuery map[string]string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(duneResponse))
	})

	q := &validate.SearchQuery{Query: "dune", MaxResults: 10, OrderBy: validate.OrderNewest, LangRestrict: "en"}
	res, err := p.Search(context.Background(), providers.SearchRequest(q))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"q": "dune", "maxResults": "10", "orderBy": "newest",
		"langRestrict": "en", "key": "test-key", "printType": "books",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if res.Provider != "googlebooks" {
		t.Errorf("expected provider provenance, got %q", res.Provider)
	}
	if res.TotalItems != 812 {
		t.Errorf("expected totalItems 812, got %d", res.TotalItems)
	}
	if len(res.Volumes) != 2 {
		t.Fatalf("expected 2 volumes after dropping bad items, got %d", len(res.Volumes))
	}

	dune := res.Volumes[0]
	if dune.ID != "B1hSG45JCX4C" || dune.Title != "Dune" {
		t.Errorf("unexpected first volume %+v", dune)
	}
	if len(dune.Authors) != 1 || dune.Authors[0] != "Frank Herbert" {
		t.Errorf("expected de-duplicated authors, got %v", dune.Authors)
	}
	if dune.ImageLinks.Thumbnail[:8] != "https://" {
		t.Errorf("expected https thumbnail, got %q", dune.ImageLinks.Thumbnail)
	}
	if len(dune.IndustryIdentifiers) != 2 {
		t.Errorf("expected 2 identifiers, got %v", dune.IndustryIdentifiers)
	}

	if got := res.Volumes[1].Title; got != "Dune Messiah: Book Two" {
		t.Errorf("expected subtitle to be joined, got %q", got)
	}
	if res.Volumes[1].Authors == nil || res.Volumes[1].Categories == nil {
		t.Error("expected absent lists to be empty, not nil")
	}
}

func TestProvider_SearchLanguageFilter(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"fr", "fr"},
		{"en", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run("lang="+tt.lang, func(t *testing.T) {
			var got url.Values
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Query()
				_, _ = w.Write([]byte(`{"totalItems": 0}`))
			})

			q, err := validate.ParseSearch(url.Values{"q": {"dune"}, "langRestrict": {tt.lang}})
			if err != nil {
				t.Fatalf("ParseSearch: %v", err)
			}
			if _, err := p.Search(context.Background(), providers.SearchRequest(q)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Get("langRestrict") != tt.want {
				t.Errorf("langRestrict = %q, want %q", got.Get("langRestrict"), tt.want)
			}
		})
	}
}

func TestProvider_Lookup(t *testing.T) {
	var gotQ, gotMax string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotMax = r.URL.Query().Get("maxResults")
		_, _ = w.Write([]byte(duneResponse))
	})

	isbn, err := validate.ParseISBN("0441013597")
	if err != nil {
		t.Fatalf("bad test isbn: %v", err)
	}
	if _, err := p.Lookup(context.Background(), providers.ISBNRequest(isbn)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQ != "isbn:9780441013593" {
		t.Errorf("expected ISBN-13 lookup query, got %q", gotQ)
	}
	if gotMax != "1" {
		t.Errorf("expected maxResults=1, got %q", gotMax)
	}
}

func TestProvider_EmptyAndMalformed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantEmpty bool
	}{
		{name: "no items", body: `{"kind":"books#volumes","totalItems":0}`, wantEmpty: true},
		{name: "total without items", body: `{"totalItems":5,"items":[]}`, wantEmpty: true},
		{name: "bad envelope", body: `{"items": {`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			q := &validate.SearchQuery{Query: "zzzz", MaxResults: 20, OrderBy: validate.OrderRelevance}
			res, err := p.Search(context.Background(), providers.SearchRequest(q))
			if tt.wantErr {
				if _, ok := err.(*providers.ParseError); !ok {
					t.Fatalf("expected ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantEmpty && (!res.Empty() || res.TotalItems != 0) {
				t.Errorf("expected empty result, got %+v", res)
			}
		})
	}
}

func TestTransformResponse_Deterministic(t *testing.T) {
	first, err := transformResponse("googlebooks", []byte(duneResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := transformResponse("googlebooks", []byte(duneResponse))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Errorf("expected identical output\n%s\n%s", a, b)
	}
	if bytes.Contains(a, []byte("null")) {
		t.Errorf("expected no null values in normalized output: %s", a)
	}
}
