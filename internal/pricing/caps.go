package pricing

import (
	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// ApplyColorCaps clamps each placement's color count to the per-placement
// cap and the highest color count the pricing table defines. Placements with
// no positive color count are dropped. Returns the clamped list and whether
// any value changed. Applying the caps twice yields the same list.
func ApplyColorCaps(
	cfg *tenant.ShopConfig,
	table *tenant.PricingTable,
	locations []domain.PrintLocation,
) ([]domain.PrintLocation, bool) {
	clamped := false
	out := make([]domain.PrintLocation, 0, len(locations))
	for _, loc := range locations {
		if loc.Colors <= 0 {
			continue
		}
		limit := cfg.PlacementColorCap(loc.Location)
		if limit <= 0 {
			limit = cfg.Printing.MaxColors
		}
		colors := loc.Colors
		if colors > limit {
			colors = limit
		}
		if colors > table.MaxColors {
			colors = table.MaxColors
		}
		if colors < 1 {
			colors = 1
		}
		if colors != loc.Colors {
			clamped = true
		}
		out = append(out, domain.PrintLocation{Location: loc.Location, Colors: colors})
	}
	return out, clamped
}
