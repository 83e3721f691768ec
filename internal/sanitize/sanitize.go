// Package sanitize redacts PII from chat messages before they reach logs.
// Customer messages routinely contain emails and phone numbers; quote text
// must stay useful for debugging without storing contact details.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\-\s().]{7,}\d`)
)

// Redactor masks PII in free text.
type Redactor struct {
	enabled bool
}

// NewRedactor creates a Redactor. When enabled is false, Redact is a no-op,
// matching the tenant-side toggle for local debugging.
func NewRedactor(enabled bool) *Redactor {
	return &Redactor{enabled: enabled}
}

// Redact masks email addresses and phone numbers in text.
func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}
	text = emailPattern.ReplaceAllString(text, "[email redacted]")
	text = phonePattern.ReplaceAllString(text, "[phone redacted]")
	return text
}

// Message trims a raw chat message for processing: strips control characters
// and caps length so a hostile payload cannot blow up regex matching.
const maxMessageLen = 2000

// Message returns msg cleaned for the parsers.
func Message(msg string) string {
	msg = strings.TrimSpace(msg)
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, msg)
}
