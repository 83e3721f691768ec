package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// RunChargePerUnit returns the per-piece print charge for one placement at
// the given quantity and color count.
func RunChargePerUnit(table *tenant.PricingTable, qty, colors int) (decimal.Decimal, error) {
	bands, ok := table.Bands(colors)
	if !ok {
		return decimal.Zero, errors.PricingGap(qty, colors)
	}
	for _, band := range bands {
		if band.Contains(qty) {
			return band.Price, nil
		}
	}
	return decimal.Zero, errors.PricingGap(qty, colors)
}

// BlankPerUnit resolves the blank garment price: the chosen garment tier when
// tiers are enabled, then the shop's single blank price, then the pricing
// table's garment base.
func BlankPerUnit(cfg *tenant.ShopConfig, table *tenant.PricingTable, chosenTier string) decimal.Decimal {
	if cfg.Garments.TiersEnabled && chosenTier != "" {
		if tier, ok := cfg.Garments.Tiers[chosenTier]; ok {
			return tier.BlankPrice
		}
	}
	if cfg.Garments.SingleBlankPrice != nil {
		return *cfg.Garments.SingleBlankPrice
	}
	return table.GarmentBase
}

// ComputeQuoteTotal prices a chat-flow quote: per-piece run charges for every
// placement plus the blank garment, times quantity. Quantity bounds are
// enforced here so every path into a computed quote shares the same checks.
func ComputeQuoteTotal(
	table *tenant.PricingTable,
	cfg *tenant.ShopConfig,
	qty int,
	locations []domain.PrintLocation,
	chosenTier string,
) (*domain.QuoteResult, error) {
	if qty < table.MinQty {
		return nil, errors.SmallOrder(table.SmallOrderMessage)
	}
	if qty > table.MaxQty {
		return nil, errors.QuantityRange(fmt.Sprintf(
			"That's a big order! For %d pieces, please contact us for a custom quote so we can give you the best bulk rate.",
			qty))
	}

	result := &domain.QuoteResult{
		Quantity:  qty,
		Locations: make([]domain.LocationCharge, 0, len(locations)),
	}
	runSum := decimal.Zero
	for _, loc := range locations {
		run, err := RunChargePerUnit(table, qty, loc.Colors)
		if err != nil {
			return nil, err
		}
		runSum = runSum.Add(run)
		result.Locations = append(result.Locations, domain.LocationCharge{
			Location:   loc.Location,
			Colors:     loc.Colors,
			PerUnitRun: Cents(run),
		})
	}

	blank := BlankPerUnit(cfg, table, chosenTier)
	perUnit := runSum.Add(blank)

	result.PerUnitPrint = Cents(runSum)
	result.BlankPerUnit = Cents(blank)
	result.PerUnitTotal = Cents(perUnit)
	result.GrandTotal = Cents(perUnit.Mul(decimal.NewFromInt(int64(qty))))
	return result, nil
}
