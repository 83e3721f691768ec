package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

// priceQuote answers a single-location ask in one sentence, the pre-wizard
// behavior kept for FAQ-driven quotes and plain "72 shirts 3 colors"
// messages when no session is active. Empty string means "cannot price".
func priceQuote(table *tenant.PricingTable, qty, colors int) string {
	if _, ok := table.Bands(colors); !ok {
		return ""
	}
	if qty < table.MinQty {
		return table.SmallOrderMessage
	}
	if qty > table.MaxQty {
		return fmt.Sprintf(
			"That's a big order! For %d pieces and %d color(s), please contact us for a custom quote so we can give you the best bulk rate.",
			qty, colors)
	}

	run, err := pricing.RunChargePerUnit(table, qty, colors)
	if err != nil {
		return ""
	}
	perPiece := run.Add(table.GarmentBase)
	total := perPiece.Mul(decimal.NewFromInt(int64(qty)))
	return fmt.Sprintf(
		"For %d pieces with %d color(s), it's $%s per piece (incl. %s garment). Estimated total: $%s.",
		qty, colors,
		pricing.Cents(perPiece).StringFixed(2),
		table.GarmentBase.StringFixed(2),
		pricing.Cents(total).StringFixed(2))
}

var pricingIntentWords = map[string]bool{
	"price": true, "pricing": true, "quote": true, "cost": true, "how": true, "much": true,
}

// pricingResponse answers a message that looks like a pricing ask. When the
// intent is explicit but details are missing it asks for them; otherwise it
// only answers when both quantity and colors were found. Empty string means
// the message was not a pricing ask.
func pricingResponse(table *tenant.PricingTable, msg string) string {
	intent := false
	for _, w := range textparse.Words(msg) {
		if pricingIntentWords[w] {
			intent = true
			break
		}
	}

	qty, colors := textparse.ExtractQuantityAndColors(msg)
	if intent {
		if qty == 0 || colors == 0 {
			var need []string
			if qty == 0 {
				need = append(need, "quantity")
			}
			if colors == 0 {
				need = append(need, "number of colors")
			}
			return fmt.Sprintf("Happy to quote! I just need the %s.", strings.Join(need, ", "))
		}
		return priceQuote(table, qty, colors)
	}

	if qty > 0 && colors > 0 {
		return priceQuote(table, qty, colors)
	}
	return ""
}
