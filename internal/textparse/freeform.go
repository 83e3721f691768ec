package textparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LocationMention is one placement pulled from a freeform request. Colors is
// 0 when the message named the placement without a count.
type LocationMention struct {
	Location string
	Colors   int
}

// FreeformRequest is the structured reading of a whole-sentence quote request
// like "72 shirts, 2 colors front, 1 color back".
type FreeformRequest struct {
	Quantity     int
	Locations    []LocationMention
	GlobalColors int // trailing color count not bound to any placement, 0 if none
}

var (
	colorsAfterPattern = regexp.MustCompile(
		`(\d{1,2})\s*c(?:olors?)?\s*(front|back|left sleeve|right sleeve|sleeves?|pocket)\b`)
	colorsBeforePattern = regexp.MustCompile(
		`(front|back|left sleeve|right sleeve|sleeves?|pocket)\s*(\d{1,2})\s*c(?:olors?)?\b`)
	frontAndBackPattern = regexp.MustCompile(`\bfront\s*(?:\+|&|and|\/)\s*back\b`)
	globalColorsPattern = regexp.MustCompile(`\b(\d{1,2})\s*c(?:olors?)?\b`)
)

type span struct{ start, end int }

// ParseFreeform reads quantity and any number of placement/color pairs out of
// one message. Explicit pairs are matched first in both orders, then a
// "front and back" combo, then bare placement names. Color counts above
// maxColors are clamped. The text consumed by explicit pairs is removed
// before looking for a trailing global color count, so "2 colors front" does
// not double as a global count.
func ParseFreeform(msg string, maxColors int) FreeformRequest {
	text := strings.ToLower(msg)
	req := FreeformRequest{Quantity: DetectQuantity(text)}

	var consumed []span

	for _, m := range colorsAfterPattern.FindAllStringSubmatchIndex(text, -1) {
		c, _ := strconv.Atoi(text[m[2]:m[3]])
		locKey := aliasOrKey(text[m[4]:m[5]])
		for _, loc := range ExpandSleeves(locKey) {
			req.Locations = append(req.Locations, LocationMention{
				Location: loc,
				Colors:   minInt(c, maxColors),
			})
		}
		consumed = append(consumed, span{m[0], m[1]})
	}

	for _, m := range colorsBeforePattern.FindAllStringSubmatchIndex(text, -1) {
		c, _ := strconv.Atoi(text[m[4]:m[5]])
		locKey := aliasOrKey(text[m[2]:m[3]])
		for _, loc := range ExpandSleeves(locKey) {
			req.Locations = append(req.Locations, LocationMention{
				Location: loc,
				Colors:   minInt(c, maxColors),
			})
		}
		consumed = append(consumed, span{m[0], m[1]})
	}

	if frontAndBackPattern.MatchString(text) && !hasAnyLocation(req.Locations, "front", "back") {
		req.Locations = append(req.Locations,
			LocationMention{Location: "front"},
			LocationMention{Location: "back"})
	}

	for _, name := range []struct{ spoken, key string }{
		{"front", "front"}, {"back", "back"},
		{"left sleeve", "left_sleeve"}, {"right sleeve", "right_sleeve"},
		{"pocket", "pocket"}, {"sleeves", "sleeves"},
	} {
		if !wordBound(name.spoken).MatchString(text) {
			continue
		}
		expanded := ExpandSleeves(name.key)
		if hasAnyLocation(req.Locations, expanded...) {
			continue
		}
		for _, loc := range expanded {
			req.Locations = append(req.Locations, LocationMention{Location: loc})
		}
	}

	remainder := pruneSpans(text, consumed)
	if m := globalColorsPattern.FindStringSubmatch(remainder); m != nil {
		req.GlobalColors, _ = strconv.Atoi(m[1])
	}

	req.Locations = dedupeLocations(req.Locations)
	return req
}

func aliasOrKey(spoken string) string {
	if key, ok := locationAliases[spoken]; ok {
		return key
	}
	return strings.ReplaceAll(spoken, " ", "_")
}

func hasAnyLocation(mentions []LocationMention, locs ...string) bool {
	for _, m := range mentions {
		for _, loc := range locs {
			if m.Location == loc {
				return true
			}
		}
	}
	return false
}

// pruneSpans removes the consumed byte ranges from text.
func pruneSpans(text string, consumed []span) string {
	if len(consumed) == 0 {
		return text
	}
	sort.Slice(consumed, func(i, j int) bool { return consumed[i].start < consumed[j].start })
	var parts []string
	last := 0
	for _, s := range consumed {
		if s.start > last {
			parts = append(parts, text[last:s.start])
		} else {
			parts = append(parts, "")
		}
		last = s.end
	}
	parts = append(parts, text[last:])
	return strings.Join(parts, " ")
}

// dedupeLocations keeps the first mention of each placement, backfilling a
// color count from a later duplicate when the first had none.
func dedupeLocations(mentions []LocationMention) []LocationMention {
	seen := make(map[string]int)
	var out []LocationMention
	for _, m := range mentions {
		if idx, ok := seen[m.Location]; ok {
			if out[idx].Colors == 0 && m.Colors != 0 {
				out[idx].Colors = m.Colors
			}
			continue
		}
		seen[m.Location] = len(out)
		out = append(out, m)
	}
	return out
}

var wordBoundPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, token := range []string{"front", "back", "left sleeve", "right sleeve", "pocket", "sleeves"} {
		out[token] = regexp.MustCompile(`\b` + token + `\b`)
	}
	return out
}()

func wordBound(token string) *regexp.Regexp {
	return wordBoundPatterns[token]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
