package cache

import (
	"strings"
	"testing"

	"bookproxy/pkg/validate"
)

func TestSearchKey(t *testing.T) {
	base := &validate.SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: validate.OrderRelevance}

	tests := []struct {
		name  string
		other *validate.SearchQuery
		same  bool
	}{
		{
			name:  "identical",
			other: &validate.SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: validate.OrderRelevance},
			same:  true,
		},
		{
			name:  "case and whitespace",
			other: &validate.SearchQuery{Query: "  dUNE ", MaxResults: 20, OrderBy: validate.OrderRelevance},
			same:  true,
		},
		{
			name:  "different max results",
			other: &validate.SearchQuery{Query: "Dune", MaxResults: 10, OrderBy: validate.OrderRelevance},
		},
		{
			name:  "different order",
			other: &validate.SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: validate.OrderNewest},
		},
		{
			name:  "language restriction",
			other: &validate.SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: validate.OrderRelevance, LangRestrict: "en"},
		},
		{
			name:  "different query",
			other: &validate.SearchQuery{Query: "Dune Messiah", MaxResults: 20, OrderBy: validate.OrderRelevance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchKey(tt.other) == SearchKey(base)
			if got != tt.same {
				t.Errorf("keys equal = %v, want %v", got, tt.same)
			}
		})
	}

	if key := SearchKey(base); !strings.HasPrefix(key, "search:v1:") || len(key) != len("search:v1:")+64 {
		t.Errorf("unexpected key shape %q", key)
	}
}

func TestISBNKey(t *testing.T) {
	isbn10, err := validate.ParseISBN("0-441-17271-7")
	if err != nil {
		t.Fatalf("ParseISBN: %v", err)
	}
	isbn13, err := validate.ParseISBN("978-0441172719")
	if err != nil {
		t.Fatalf("ParseISBN: %v", err)
	}

	if ISBNKey(isbn10) != ISBNKey(isbn13) {
		t.Errorf("ISBN-10 key %q != ISBN-13 key %q", ISBNKey(isbn10), ISBNKey(isbn13))
	}
	if want := "isbn:v1:9780441172719"; ISBNKey(isbn13) != want {
		t.Errorf("ISBNKey = %q, want %q", ISBNKey(isbn13), want)
	}
}
