package validate

import (
	"errors"
	"testing"
)

func TestParseISBN(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     ISBNKey
		wantCode string
	}{
		{name: "valid isbn-13", raw: "9780451524935", want: "9780451524935"},
		{name: "hyphenated isbn-13", raw: "978-0-441-01359-3", want: "9780441013593"},
		{name: "leading equals", raw: "=9780142437209", want: "9780142437209"},
		{name: "repeated equals with spaces", raw: " ==978 0142437209 ", want: "9780142437209"},
		{name: "valid isbn-10", raw: "0-451-52493-4", want: "0451524934"},
		{name: "isbn-10 with X", raw: "0-8044-2957-X", want: "080442957X"},
		{name: "isbn-10 lowercase x", raw: "080442957x", want: "080442957X"},
		{name: "isbn prefix text stripped", raw: "ISBN 978-0-306-40615-7", want: "9780306406157"},

		{name: "empty", raw: "", wantCode: CodeRequired},
		{name: "whitespace only", raw: "   ", wantCode: CodeRequired},
		{name: "isbn-13 bad checksum", raw: "9780451524936", wantCode: CodeInvalidChecksum},
		{name: "isbn-10 bad checksum", raw: "0451524935", wantCode: CodeInvalidChecksum},
		{name: "too short", raw: "978045152", wantCode: CodeInvalidFormat},
		{name: "eleven digits", raw: "04515249341", wantCode: CodeInvalidFormat},
		{name: "X not last in isbn-10", raw: "08044X9570", wantCode: CodeInvalidFormat},
		{name: "X in isbn-13", raw: "978044101359X", wantCode: CodeInvalidFormat},
		{name: "only separators", raw: "=---", wantCode: CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISBN(tt.raw)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ParseISBN(%q) error = %v", tt.raw, err)
				}
				if got != tt.want {
					t.Errorf("ParseISBN(%q) = %q, want %q", tt.raw, got, tt.want)
				}
				return
			}

			if got != "" {
				t.Errorf("ParseISBN(%q) returned value %q alongside an error", tt.raw, got)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseISBN(%q) error = %v, want *ValidationError", tt.raw, err)
			}
			if !verr.HasCode(tt.wantCode) {
				t.Errorf("ParseISBN(%q) codes = %+v, want %s", tt.raw, verr.Errors, tt.wantCode)
			}
		})
	}
}

func TestISBNKey_ISBN13(t *testing.T) {
	tests := []struct {
		key  ISBNKey
		want string
	}{
		{"0451524934", "9780451524935"},
		{"080442957X", "9780804429573"},
		{"0306406152", "9780306406157"},
		{"9780441013593", "9780441013593"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := tt.key.ISBN13()
			if got != tt.want {
				t.Errorf("ISBN13() = %q, want %q", got, tt.want)
			}
			if _, err := ParseISBN(got); err != nil {
				t.Errorf("converted value %q does not validate: %v", got, err)
			}
		})
	}
}

func TestISBNKey_ISBN10(t *testing.T) {
	tests := []struct {
		key    ISBNKey
		want   string
		wantOK bool
	}{
		{"9780804429573", "080442957X", true},
		{"9780451524935", "0451524934", true},
		{"0451524934", "0451524934", true},
		{"9791032305690", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, ok := tt.key.ISBN10()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ISBN10() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// Every single-digit substitution of a valid ISBN-13 check digit except the
// correct one must be rejected.
func TestISBN13Checksum_Exhaustive(t *testing.T) {
	const body = "978045152493"
	for d := '0'; d <= '9'; d++ {
		s := body + string(d)
		_, err := ParseISBN(s)
		if d == '5' && err != nil {
			t.Errorf("%s rejected: %v", s, err)
		}
		if d != '5' && err == nil {
			t.Errorf("%s accepted", s)
		}
	}
}
