package validate

import (
	"fmt"
	"strings"
)

// Error codes carried by FieldError.
const (
	CodeRequired        = "required"
	CodeTooLong         = "too_long"
	CodeInvalidFormat   = "invalid_format"
	CodeInvalidChecksum = "invalid_checksum"
	CodeOutOfRange      = "out_of_range"
	CodeInvalidValue    = "invalid_value"
)

// FieldError describes one rejected request parameter.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every problem found in a request.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all field errors.
func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "invalid request"
	case 1:
		return "invalid request: " + e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("invalid request:")
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

// HasCode reports whether any field error carries code.
func (e *ValidationError) HasCode(code string) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

func fieldErr(field, code, format string, args ...any) FieldError {
	return FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}
