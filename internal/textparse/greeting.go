package textparse

import "strings"

var greetingTokens = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yo": true, "howdy": true,
	"hiya": true, "sup": true, "whats": true, "what's": true, "up": true,
	"there": true,
}

var exactGreetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yo": true, "howdy": true,
	"hi there": true, "hello there": true, "hey there": true,
}

// IsGreeting reports whether msg is a short salutation with no other
// content. Only alphabetic words are considered, and anything beyond four of
// them, or any non-greeting word, disqualifies the message, so "hi, I need
// 50 shirts" flows through to quote detection.
func IsGreeting(msg string) bool {
	t := Normalize(msg)
	if t == "" {
		return false
	}
	if exactGreetings[t] {
		return true
	}

	var tokens []string
	for _, w := range strings.Split(t, " ") {
		if isAlpha(w) {
			tokens = append(tokens, w)
		}
	}
	if len(tokens) == 0 {
		return false
	}
	if len(tokens) <= 3 && tokens[0] == "good" {
		switch tokens[len(tokens)-1] {
		case "morning", "afternoon", "evening":
			return true
		}
	}
	if len(tokens) > 4 {
		return false
	}
	for _, w := range tokens {
		if !greetingTokens[w] {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
