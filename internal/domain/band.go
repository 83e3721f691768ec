package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// QuantityBand maps a quantity range to a per-unit print price for one color
// count. A band is either a closed range [Lo, Hi] or open-ended "Lo+".
type QuantityBand struct {
	Lo    int
	Hi    int
	Open  bool
	Price decimal.Decimal
}

// Contains reports whether qty falls inside the band.
func (b QuantityBand) Contains(qty int) bool {
	if b.Open {
		return qty >= b.Lo
	}
	return qty >= b.Lo && qty <= b.Hi
}

// Overlaps reports whether two bands share any quantity.
func (b QuantityBand) Overlaps(other QuantityBand) bool {
	if b.Open && other.Open {
		return true
	}
	if b.Open {
		return other.Hi >= b.Lo
	}
	if other.Open {
		return b.Hi >= other.Lo
	}
	return b.Lo <= other.Hi && other.Lo <= b.Hi
}

// String renders the band in the pricing-table form ("24-47" or "288+").
func (b QuantityBand) String() string {
	if b.Open {
		return fmt.Sprintf("%d+", b.Lo)
	}
	return fmt.Sprintf("%d-%d", b.Lo, b.Hi)
}

// ParseBandRange parses a band key like "24-47", "288+", or "24–47"
// (en dash). The returned band carries a zero price; callers attach the
// price from the table entry.
func ParseBandRange(s string) (QuantityBand, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "–", "-"))
	if cleaned == "" {
		return QuantityBand{}, fmt.Errorf("empty quantity band")
	}

	if strings.Contains(cleaned, "+") {
		lo, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(cleaned, "+")))
		if err != nil {
			return QuantityBand{}, fmt.Errorf("invalid open band %q: %w", s, err)
		}
		return QuantityBand{Lo: lo, Open: true}, nil
	}

	parts := strings.SplitN(cleaned, "-", 2)
	if len(parts) != 2 {
		return QuantityBand{}, fmt.Errorf("invalid band %q: expected lo-hi or lo+", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return QuantityBand{}, fmt.Errorf("invalid band %q: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return QuantityBand{}, fmt.Errorf("invalid band %q: %w", s, err)
	}
	if hi < lo {
		return QuantityBand{}, fmt.Errorf("invalid band %q: hi below lo", s)
	}
	return QuantityBand{Lo: lo, Hi: hi}, nil
}
