package validate

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestParseSearch(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   SearchQuery
	}{
		{
			name:   "defaults",
			values: url.Values{"q": {"Dune"}},
			want:   SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: OrderRelevance, IncludeTranslations: true},
		},
		{
			name:   "all parameters",
			values: url.Values{"q": {"  Dune  "}, "maxResults": {"3"}, "orderBy": {"Newest"}, "langRestrict": {"FR"}},
			want:   SearchQuery{Query: "Dune", MaxResults: 3, OrderBy: OrderNewest, LangRestrict: "fr", IncludeTranslations: false},
		},
		{
			name:   "english keeps translations",
			values: url.Values{"q": {"Dune"}, "langRestrict": {"en"}},
			want:   SearchQuery{Query: "Dune", MaxResults: 20, OrderBy: OrderRelevance, LangRestrict: "en", IncludeTranslations: true},
		},
		{
			name:   "bounds inclusive",
			values: url.Values{"q": {"Dune"}, "maxResults": {"40"}},
			want:   SearchQuery{Query: "Dune", MaxResults: 40, OrderBy: OrderRelevance, IncludeTranslations: true},
		},
		{
			name:   "markup stripped",
			values: url.Values{"q": {`<b>"Dune"</b>`}},
			want:   SearchQuery{Query: "bDune/b", MaxResults: 20, OrderBy: OrderRelevance, IncludeTranslations: true},
		},
		{
			name:   "nested scheme prefix",
			values: url.Values{"q": {"javajavascript:script:alert(1)"}},
			want:   SearchQuery{Query: "alert(1)", MaxResults: 20, OrderBy: OrderRelevance, IncludeTranslations: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearch(tt.values)
			if err != nil {
				t.Fatalf("ParseSearch() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("ParseSearch() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   map[string]string // field -> code
	}{
		{"missing q", url.Values{}, map[string]string{"q": CodeRequired}},
		{"blank q", url.Values{"q": {"   "}}, map[string]string{"q": CodeRequired}},
		{"too long", url.Values{"q": {strings.Repeat("a", 501)}}, map[string]string{"q": CodeTooLong}},
		{"empty after sanitize", url.Values{"q": {"<>'\"` data:"}}, map[string]string{"q": CodeInvalidValue}},
		{"maxResults zero", url.Values{"q": {"x"}, "maxResults": {"0"}}, map[string]string{"maxResults": CodeOutOfRange}},
		{"maxResults 41", url.Values{"q": {"x"}, "maxResults": {"41"}}, map[string]string{"maxResults": CodeOutOfRange}},
		{"maxResults text", url.Values{"q": {"x"}, "maxResults": {"ten"}}, map[string]string{"maxResults": CodeInvalidValue}},
		{"orderBy unknown", url.Values{"q": {"x"}, "orderBy": {"oldest"}}, map[string]string{"orderBy": CodeInvalidValue}},
		{"lang digits", url.Values{"q": {"x"}, "langRestrict": {"e1"}}, map[string]string{"langRestrict": CodeInvalidFormat}},
		{"lang too long", url.Values{"q": {"x"}, "langRestrict": {"engl"}}, map[string]string{"langRestrict": CodeInvalidFormat}},
		{
			"every field at once",
			url.Values{"maxResults": {"99"}, "orderBy": {"x"}, "langRestrict": {"1"}},
			map[string]string{"q": CodeRequired, "maxResults": CodeOutOfRange, "orderBy": CodeInvalidValue, "langRestrict": CodeInvalidFormat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearch(tt.values)
			if got != nil {
				t.Errorf("ParseSearch() returned %+v alongside an error", got)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseSearch() error = %v, want *ValidationError", err)
			}
			if len(verr.Errors) != len(tt.want) {
				t.Fatalf("got %d field errors %+v, want %d", len(verr.Errors), verr.Errors, len(tt.want))
			}
			for _, fe := range verr.Errors {
				if tt.want[fe.Field] != fe.Code {
					t.Errorf("field %s code = %s, want %s", fe.Field, fe.Code, tt.want[fe.Field])
				}
			}
		})
	}
}

func TestParseSearch_LengthCheckedBeforeSanitize(t *testing.T) {
	// 500 runes of which half are stripped; the raw length is what counts.
	q := strings.Repeat("a<", 250)
	got, err := ParseSearch(url.Values{"q": {q}})
	if err != nil {
		t.Fatalf("ParseSearch() error = %v", err)
	}
	if got.Query != strings.Repeat("a", 250) {
		t.Errorf("Query length = %d, want 250", len(got.Query))
	}

	if _, err := ParseSearch(url.Values{"q": {q + "<"}}); err == nil {
		t.Error("501 raw characters accepted")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dune", "Dune"},
		{"Frank Herbert's Dune", "Frank Herberts Dune"},
		{"JavaScript:alert(1)", "alert(1)"},
		{"DATA:text/html", "text/html"},
		{"vbscript:msgbox", "msgbox"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"Émile Zola", "Émile Zola"},
		{"İstanbul data:x", "İstanbul x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	one := &ValidationError{Errors: []FieldError{{Field: "q", Code: CodeRequired, Message: "search term is required"}}}
	if got := one.Error(); got != "invalid request: q: search term is required" {
		t.Errorf("Error() = %q", got)
	}

	two := &ValidationError{Errors: []FieldError{
		{Field: "q", Message: "a"},
		{Field: "maxResults", Message: "b"},
	}}
	if got := two.Error(); !strings.Contains(got, "q: a") || !strings.Contains(got, "maxResults: b") {
		t.Errorf("Error() = %q", got)
	}
}
