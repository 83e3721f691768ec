package textparse

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  WHAT'S   up?  ", "what s up"},
		{"72 shirts—2 colors", "72 shirts 2 colors"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsReset(t *testing.T) {
	for _, msg := range []string{"reset", "Restart", "START OVER", "start-over", "new quote", "new-quote", "clear", "  reset  "} {
		if !IsReset(msg) {
			t.Errorf("IsReset(%q) = false, want true", msg)
		}
	}
	for _, msg := range []string{"resetting", "new", "quote", "hello"} {
		if IsReset(msg) {
			t.Errorf("IsReset(%q) = true, want false", msg)
		}
	}
}

func TestExtractQuantityAndColors(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		wantQty    int
		wantColors int
	}{
		{"unit and colors", "I need 72 shirts with 3 colors", 72, 3},
		{"tshirt spelling", "100 t-shirts, 2 color design", 100, 2},
		{"pieces", "quote for 250 pieces 4 colors", 250, 4},
		{"qty label", "qty: 150, 3 colors", 150, 3},
		{"spelled colors", "48 tees in two colors", 48, 2},
		{"bare numbers", "72 and 3", 72, 3},
		{"bare numbers both small", "5 and 3", 5, 5},
		{"only quantity", "need 500 shirts", 500, 0},
		{"only colors", "three colors", 0, 3},
		{"nothing", "hello there", 0, 0},
		{"abbreviated c", "72 shirts 3c", 72, 3},
		{"word colors with digit present", "50 shirts in three", 50, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, colors := ExtractQuantityAndColors(tt.msg)
			if qty != tt.wantQty || colors != tt.wantColors {
				t.Errorf("ExtractQuantityAndColors(%q) = (%d, %d), want (%d, %d)",
					tt.msg, qty, colors, tt.wantQty, tt.wantColors)
			}
		})
	}
}

func TestDetectQuantity(t *testing.T) {
	tests := []struct {
		msg  string
		want int
	}{
		{"72 shirts 2 colors front", 72},
		{"quantity: 300", 300},
		{"2 colors and 144", 144},
		{"no numbers here", 0},
	}
	for _, tt := range tests {
		if got := DetectQuantity(tt.msg); got != tt.want {
			t.Errorf("DetectQuantity(%q) = %d, want %d", tt.msg, got, tt.want)
		}
	}
}

func TestIsGreeting(t *testing.T) {
	greetings := []string{
		"hi", "Hello!", "hey there", "HOWDY", "good morning", "Good Evening", "yo",
	}
	for _, msg := range greetings {
		if !IsGreeting(msg) {
			t.Errorf("IsGreeting(%q) = false, want true", msg)
		}
	}
	notGreetings := []string{
		"", "hi i need 50 shirts", "how much for 72 tees", "good grief",
		"hello hello hello hello hello",
	}
	for _, msg := range notGreetings {
		if IsGreeting(msg) {
			t.Errorf("IsGreeting(%q) = true, want false", msg)
		}
	}
}
