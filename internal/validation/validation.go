// Package validation provides input validation for API requests.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a validation failure with field context.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// FieldErrors returns errors for a specific field.
func (e ValidationErrors) FieldErrors(field string) ValidationErrors {
	var result ValidationErrors
	for _, err := range e {
		if err.Field == field {
			result = append(result, err)
		}
	}
	return result
}

// Error codes for validation failures.
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
	CodeTooLong       = "too_long"
	CodeInvalidValue  = "invalid_value"
	CodeMalicious     = "malicious_content"
)

// Validator accumulates validation errors across fields.
type Validator struct {
	errors ValidationErrors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// Errors returns all accumulated validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// IsValid returns true if no validation errors occurred.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// AddError adds a validation error.
func (v *Validator) AddError(field, message, code string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

// Required validates that a string field is not empty.
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required", CodeRequired)
		return false
	}
	return true
}

// MaxLength validates string length doesn't exceed maximum.
func (v *Validator) MaxLength(field, value string, maxLen int) bool {
	if utf8.RuneCountInString(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", maxLen), CodeTooLong)
		return false
	}
	return true
}

// emailRegex accepts a pragmatic subset of RFC 5322 addresses.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// Email validates an email address format.
func (v *Validator) Email(field, value string) bool {
	if value == "" {
		return true // Use Required() separately if needed
	}
	if !emailRegex.MatchString(value) {
		v.AddError(field, "must be a valid email address", CodeInvalidFormat)
		return false
	}
	return true
}

// OneOf validates that value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")), CodeInvalidValue)
	return false
}

// NoScriptTags validates that the value doesn't contain script tags.
func (v *Validator) NoScriptTags(field, value string) bool {
	lower := strings.ToLower(value)
	if strings.Contains(lower, "<script") || strings.Contains(lower, "javascript:") {
		v.AddError(field, "contains potentially malicious content", CodeMalicious)
		return false
	}
	return true
}

// SafeString validates a string contains no control characters other than
// newlines and tabs.
func (v *Validator) SafeString(field, value string) bool {
	for _, r := range value {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			v.AddError(field, "contains invalid control characters", CodeMalicious)
			return false
		}
	}
	return true
}

// PositiveInt validates that an integer is greater than zero.
func (v *Validator) PositiveInt(field string, value int) bool {
	if value <= 0 {
		v.AddError(field, "must be positive", CodeInvalidValue)
		return false
	}
	return true
}

// Range validates an integer is within range.
func (v *Validator) Range(field string, value, minVal, maxVal int) bool {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal), CodeInvalidValue)
		return false
	}
	return true
}
