package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// UpsellInput is a requested area-priced decoration line.
type UpsellInput struct {
	Key      string
	Label    string
	WidthIn  decimal.Decimal
	HeightIn decimal.Decimal
	Qty      int
}

var sqInPerSqFt = decimal.NewFromInt(144)

// ComputeUpsell prices one upsell line: width x height in square feet, times
// the catalog rate, times quantity, rounded to the tenant's configured
// precision. Returns nil when the module is disabled, the key is unknown, or
// any dimension is not positive. A nil result means "no upsell line", never
// an error.
func ComputeUpsell(cfg *tenant.ShopConfig, in *UpsellInput) *domain.UpsellResult {
	if in == nil || !cfg.Console.Upsell.Enabled {
		return nil
	}
	item, ok := cfg.Console.Upsell.Items[in.Key]
	if !ok {
		return nil
	}
	if !in.WidthIn.IsPositive() || !in.HeightIn.IsPositive() || in.Qty <= 0 {
		return nil
	}

	area := in.WidthIn.Mul(in.HeightIn).Div(sqInPerSqFt)
	total := area.Mul(item.RatePerSqFt).Mul(decimal.NewFromInt(int64(in.Qty))).
		Round(cfg.Console.Upsell.Precision)

	label := in.Label
	if label == "" {
		label = item.Label
	}
	return &domain.UpsellResult{
		Key:         in.Key,
		Label:       label,
		WidthIn:     in.WidthIn.Round(2),
		HeightIn:    in.HeightIn.Round(2),
		Qty:         in.Qty,
		RatePerSqFt: item.RatePerSqFt.Round(4),
		AreaSqFt:    area.Round(2),
		Total:       total,
	}
}
