package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRequired(t *testing.T) {
	v := New()
	if v.Required("name", "front") != true {
		t.Error("Required(non-empty) = false")
	}
	if v.Required("name", "  ") != false {
		t.Error("Required(whitespace) = true")
	}
	if v.IsValid() {
		t.Error("expected accumulated error")
	}
	if len(v.Errors().FieldErrors("name")) != 1 {
		t.Errorf("FieldErrors = %v", v.Errors().FieldErrors("name"))
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"buyer@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"", true}, // empty passes, pair with Required
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
		{"user@-bad.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			v := New()
			if got := v.Email("email", tt.email); got != tt.valid {
				t.Errorf("Email(%q) = %v, expected %v", tt.email, got, tt.valid)
			}
		})
	}
}

func TestSafeString(t *testing.T) {
	v := New()
	if !v.SafeString("msg", "50 shirts\nfront 2 colors\ttab") {
		t.Error("newlines and tabs should be allowed")
	}
	if v.SafeString("msg", "bad\x00byte") {
		t.Error("NUL byte should be rejected")
	}
}

func TestNoScriptTags(t *testing.T) {
	v := New()
	if !v.NoScriptTags("msg", "plain message") {
		t.Error("plain text should pass")
	}
	if v.NoScriptTags("msg", "<ScRiPt>alert(1)</script>") {
		t.Error("script tag should be rejected")
	}
	if v.NoScriptTags("msg", "javascript:alert(1)") {
		t.Error("javascript scheme should be rejected")
	}
}

func TestRange(t *testing.T) {
	v := New()
	if !v.Range("colors", 3, 1, 12) {
		t.Error("3 in [1,12] should pass")
	}
	if v.Range("colors", 13, 1, 12) {
		t.Error("13 in [1,12] should fail")
	}
}

func TestQuoteValidatorQuantity(t *testing.T) {
	v := NewQuoteValidator()
	v.ValidateQuantity(50)
	if !v.IsValid() {
		t.Errorf("quantity 50 errors = %v", v.Errors())
	}

	v = NewQuoteValidator()
	v.ValidateQuantity(-1)
	if v.IsValid() {
		t.Error("negative quantity should fail")
	}

	v = NewQuoteValidator()
	v.ValidateQuantity(MaxQuoteQuantity + 1)
	if v.IsValid() {
		t.Error("huge quantity should fail")
	}
}

func TestQuoteValidatorPlacement(t *testing.T) {
	v := NewQuoteValidator()
	v.ValidatePlacement(0, "front", 2)
	if !v.IsValid() {
		t.Errorf("valid placement errors = %v", v.Errors())
	}

	v = NewQuoteValidator()
	v.ValidatePlacement(0, "", 2)
	if v.IsValid() {
		t.Error("empty name should fail")
	}

	v = NewQuoteValidator()
	v.ValidatePlacement(1, "back", 13)
	if v.IsValid() {
		t.Error("13 colors should fail hard cap")
	}
	if len(v.Errors().FieldErrors("placements[1].colors")) != 1 {
		t.Errorf("expected colors field error, got %v", v.Errors())
	}
}

func TestQuoteValidatorManualGarmentCost(t *testing.T) {
	v := NewQuoteValidator()
	v.ValidateManualGarmentCost(decimal.RequireFromString("4.50"))
	if !v.IsValid() {
		t.Errorf("cost 4.50 errors = %v", v.Errors())
	}

	v = NewQuoteValidator()
	v.ValidateManualGarmentCost(decimal.RequireFromString("100.01"))
	if v.IsValid() {
		t.Error("cost above 100 should fail")
	}

	v = NewQuoteValidator()
	v.ValidateManualGarmentCost(decimal.RequireFromString("-1"))
	if v.IsValid() {
		t.Error("negative cost should fail")
	}
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantLimit     int
		wantOffset    int
	}{
		{"defaults", 0, 0, DefaultPageLimit, 0},
		{"explicit", 25, 100, 25, 100},
		{"clamped limit", 5000, 0, MaxPageLimit, 0},
		{"negative offset", 10, -5, 10, 0},
		{"negative limit", -1, 0, DefaultPageLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePagination(tt.limit, tt.offset)
			if got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("NormalizePagination(%d, %d) = %+v", tt.limit, tt.offset, got)
			}
		})
	}
}
