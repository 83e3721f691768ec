package textparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jkindrix/shopquote/internal/domain"
)

// locationAliases maps spoken names to canonical placement keys. "sleeves"
// stays symbolic until ExpandSleeves turns it into both sides.
var locationAliases = map[string]string{
	"front":        domain.LocationFront,
	"back":         domain.LocationBack,
	"left sleeve":  domain.LocationLeftSleeve,
	"right sleeve": domain.LocationRightSleeve,
	"sleeve":       domain.LocationLeftSleeve,
	"sleeves":      "sleeves",
	"left":         domain.LocationLeftSleeve,
	"right":        domain.LocationRightSleeve,
	"pocket":       domain.LocationPocket,
}

// ExpandSleeves resolves the symbolic sleeve keys to concrete placements.
func ExpandSleeves(loc string) []string {
	switch loc {
	case "sleeves":
		return []string{domain.LocationLeftSleeve, domain.LocationRightSleeve}
	case "sleeve":
		return []string{domain.LocationLeftSleeve}
	}
	return []string{loc}
}

// LabelFor returns the display label for a placement key.
func LabelFor(loc string) string {
	switch loc {
	case domain.LocationLeftSleeve:
		return "Left Sleeve"
	case domain.LocationRightSleeve:
		return "Right Sleeve"
	}
	words := strings.Split(strings.ReplaceAll(loc, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var looseColorsPattern = regexp.MustCompile(`\b(\d{1,2})\s*(?:c|color|colors|clr|clrs)?\b`)

// locationTokens is ordered longest first so "left sleeve" wins over "left".
var locationTokens = []struct {
	token   string
	pattern *regexp.Regexp
}{
	{"right sleeve", regexp.MustCompile(`\bright sleeve\b`)},
	{"left sleeve", regexp.MustCompile(`\bleft sleeve\b`)},
	{"sleeve", regexp.MustCompile(`\bsleeve\b`)},
	{"pocket", regexp.MustCompile(`\bpocket\b`)},
	{"front", regexp.MustCompile(`\bfront\b`)},
	{"right", regexp.MustCompile(`\bright\b`)},
	{"back", regexp.MustCompile(`\bback\b`)},
	{"left", regexp.MustCompile(`\bleft\b`)},
}

// ParseLocationColors reads one location and optional color count out of a
// short reply like "back 2 colors". Location is empty and colors 0 when not
// found.
func ParseLocationColors(text string) (location string, colors int) {
	t := strings.TrimSpace(strings.ToLower(text))
	if m := looseColorsPattern.FindStringSubmatch(t); m != nil {
		colors, _ = strconv.Atoi(m[1])
	}
	for _, lt := range locationTokens {
		if lt.pattern.MatchString(t) {
			location = locationAliases[lt.token]
			break
		}
	}
	return location, colors
}
