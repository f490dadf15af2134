package validate

import (
	"strings"
)

// ISBNKey is a checksum-valid ISBN-10 or ISBN-13 with every separator
// removed. Only ParseISBN produces valid values.
type ISBNKey string

// ParseISBN canonicalizes and validates an ISBN. Leading '=' characters
// (left by spreadsheet exports), hyphens, spaces and anything else outside
// [0-9Xx] are removed before the length and checksum checks.
func ParseISBN(raw string) (ISBNKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Errors: []FieldError{
			fieldErr("isbn", CodeRequired, "isbn is required"),
		}}
	}

	s := canonicalISBN(trimmed)

	if err := checkISBN(s); err != nil {
		return "", &ValidationError{Errors: []FieldError{*err}}
	}
	return ISBNKey(s), nil
}

func canonicalISBN(s string) string {
	s = strings.TrimLeft(s, "=")

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == 'x' || c == 'X':
			sb.WriteByte('X')
		}
	}
	return sb.String()
}

func checkISBN(s string) *FieldError {
	invalid := func(msg string) *FieldError {
		fe := fieldErr("isbn", CodeInvalidFormat, "%s", msg)
		return &fe
	}

	switch len(s) {
	case 10:
		if i := strings.IndexByte(s, 'X'); i >= 0 && i != 9 {
			return invalid("X is only allowed as the ISBN-10 check digit")
		}
		if !isbn10Checksum(s) {
			fe := fieldErr("isbn", CodeInvalidChecksum, "isbn-10 checksum does not match")
			return &fe
		}
	case 13:
		if strings.IndexByte(s, 'X') >= 0 {
			return invalid("isbn-13 must contain only digits")
		}
		if !isbn13Checksum(s) {
			fe := fieldErr("isbn", CodeInvalidChecksum, "isbn-13 checksum does not match")
			return &fe
		}
	default:
		return invalid("isbn must have 10 or 13 digits")
	}
	return nil
}

// isbn10Checksum: sum of digit*weight for weights 10..1 is divisible by 11.
func isbn10Checksum(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		d := int(s[i] - '0')
		if s[i] == 'X' {
			d = 10
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// isbn13Checksum: weights alternate 1 and 3, sum divisible by 10.
func isbn13Checksum(s string) bool {
	return isbn13Sum(s[:13])%10 == 0
}

func isbn13Sum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		d := int(s[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum
}

// String returns the canonical form as parsed.
func (k ISBNKey) String() string {
	return string(k)
}

// IsISBN10 reports whether the key was given in ISBN-10 form.
func (k ISBNKey) IsISBN10() bool {
	return len(k) == 10
}

// ISBN13 returns the ISBN-13 form. ISBN-10 values get the 978 prefix and
// a recomputed check digit.
func (k ISBNKey) ISBN13() string {
	if len(k) != 10 {
		return string(k)
	}
	body := "978" + string(k[:9])
	check := (10 - isbn13Sum(body)%10) % 10
	return body + string(rune('0'+check))
}

// ISBN10 returns the ISBN-10 form when one exists (978 prefix only).
func (k ISBNKey) ISBN10() (string, bool) {
	switch {
	case len(k) == 10:
		return string(k), true
	case len(k) == 13 && strings.HasPrefix(string(k), "978"):
		body := string(k[3:12])
		sum := 0
		for i := 0; i < 9; i++ {
			sum += int(body[i]-'0') * (10 - i)
		}
		check := (11 - sum%11) % 11
		if check == 10 {
			return body + "X", true
		}
		return body + string(rune('0'+check)), true
	}
	return "", false
}
