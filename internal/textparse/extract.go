package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	colorsPattern = regexp.MustCompile(
		`(?:(\d+)|(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve))\s*[- ]*(?:color|colors|colour|colours|c|clr|clrs)\b`)
	qtyUnitPattern  = regexp.MustCompile(`(\d+)\s*(?:t-?shirts?|tshirts?|tees?|shirts?|pieces?|pcs?)\b`)
	qtyLabelPattern = regexp.MustCompile(`(?:qty|quantity)\s*[:\-]?\s*(\d+)\b`)
	digitsPattern   = regexp.MustCompile(`\d+`)
	bareNumPattern  = regexp.MustCompile(`\b\d+\b`)
)

// numberWordPatterns is checked lowest value first so "one" beats "two" in
// "one or two colors".
var numberWordPatterns = func() []struct {
	pattern *regexp.Regexp
	value   int
} {
	words := []string{
		"one", "two", "three", "four", "five", "six",
		"seven", "eight", "nine", "ten", "eleven", "twelve",
	}
	out := make([]struct {
		pattern *regexp.Regexp
		value   int
	}, len(words))
	for i, w := range words {
		out[i].pattern = regexp.MustCompile(`\b` + w + `\b`)
		out[i].value = i + 1
	}
	return out
}()

// ExtractQuantityAndColors pulls a quantity and color count out of a single
// sentence. Either result is 0 when absent. When the message has bare numbers
// with no labels, values 1 through 12 are treated as color candidates and the
// largest remaining number as the quantity.
func ExtractQuantityAndColors(msg string) (qty, colors int) {
	text := strings.ToLower(msg)

	if m := colorsPattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			colors, _ = strconv.Atoi(m[1])
		} else {
			colors = numberWords[m[2]]
		}
	}

	if m := qtyUnitPattern.FindStringSubmatch(text); m != nil {
		qty, _ = strconv.Atoi(m[1])
	}
	if qty == 0 {
		if m := qtyLabelPattern.FindStringSubmatch(text); m != nil {
			qty, _ = strconv.Atoi(m[1])
		}
	}

	if qty == 0 || colors == 0 {
		var nums []int
		for _, s := range digitsPattern.FindAllString(text, -1) {
			n, _ := strconv.Atoi(s)
			nums = append(nums, n)
		}
		if len(nums) > 0 {
			var colorCandidates, qtyCandidates []int
			for _, n := range nums {
				if n >= 1 && n <= 12 {
					colorCandidates = append(colorCandidates, n)
				} else {
					qtyCandidates = append(qtyCandidates, n)
				}
			}
			if len(qtyCandidates) == 0 {
				qtyCandidates = nums
			}
			if qty == 0 && len(qtyCandidates) > 0 {
				qty = maxOf(qtyCandidates)
			}
			if colors == 0 && len(colorCandidates) > 0 {
				colors = colorCandidates[0]
			}
		}
	}

	// A spelled-out color count only counts when a digit is also present,
	// otherwise ordinary words like "one" would trigger quotes.
	if colors == 0 && bareNumPattern.MatchString(text) {
		for _, nw := range numberWordPatterns {
			if nw.pattern.MatchString(text) {
				colors = nw.value
				break
			}
		}
	}

	return qty, colors
}

// DetectQuantity finds a quantity in text: a number with a unit word, then a
// qty label, then the largest bare number. Returns 0 when none found.
func DetectQuantity(text string) int {
	t := strings.ToLower(text)
	if m := qtyUnitPattern.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := qtyLabelPattern.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	var best int
	for _, s := range bareNumPattern.FindAllString(t, -1) {
		if n, _ := strconv.Atoi(s); n > best {
			best = n
		}
	}
	return best
}

// FirstNumber returns the first integer in msg, or 0.
func FirstNumber(msg string) int {
	s := digitsPattern.FindString(strings.ToLower(msg))
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func maxOf(nums []int) int {
	best := nums[0]
	for _, n := range nums[1:] {
		if n > best {
			best = n
		}
	}
	return best
}
