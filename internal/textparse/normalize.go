// Package textparse extracts structured quote details from free-text chat
// messages: quantities, color counts, print locations, and greetings. All
// matching happens on lowercased text; callers pass raw user input.
package textparse

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	wordPattern       = regexp.MustCompile(`\b\w+\b`)
)

// Normalize lowercases text, strips punctuation, and collapses whitespace.
// Used for trigger matching and command detection.
func Normalize(text string) string {
	t := strings.ToLower(text)
	t = nonWordPattern.ReplaceAllString(t, " ")
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Words returns the lowercase word tokens of text.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// numberWords maps spelled-out color counts to values.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// ResetKeywords are the commands that discard any in-progress quote.
var ResetKeywords = map[string]bool{
	"reset": true, "restart": true, "start over": true, "start-over": true,
	"new quote": true, "new-quote": true, "clear": true,
}

// IsReset reports whether msg is a session reset command.
func IsReset(msg string) bool {
	return ResetKeywords[strings.TrimSpace(strings.ToLower(msg))]
}
