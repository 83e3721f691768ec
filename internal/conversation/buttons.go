package conversation

import (
	"fmt"
	"strings"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

var defaultQtyLabels = []string{"12", "24", "48", "72", "100", "200", "250", "300"}

// qtyButtons derives quantity suggestions from the 1-color band boundaries,
// always offering 12 and 24 first so small-order asks surface the policy.
func qtyButtons(table *tenant.PricingTable) []Option {
	bands := table.QuantityBandStarts()
	if len(bands) == 0 {
		return labelsToOptions(defaultQtyLabels)
	}
	labels := []string{"12", "24"}
	for _, band := range bands {
		label := fmt.Sprintf("%d", band.Lo)
		if band.Open {
			label = fmt.Sprintf("%d+", band.Lo)
		}
		if !containsLabel(labels, label) {
			labels = append(labels, label)
		}
	}
	return labelsToOptions(labels)
}

func placementButtons(cfg *tenant.ShopConfig, chosen []domain.PrintLocation) []Option {
	picked := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		picked[c.Location] = true
	}
	var opts []Option
	for _, loc := range cfg.Printing.Placements {
		if picked[loc] {
			continue
		}
		opts = append(opts, Option{Label: textparse.LabelFor(loc), Value: "placement:" + loc})
	}
	opts = append(opts, Option{Label: "Custom…", Value: "custom_location"})
	return opts
}

func colorButtons(cfg *tenant.ShopConfig) []Option {
	maxColors := cfg.Printing.MaxColors
	n := maxColors
	if n > 6 {
		n = 6
	}
	var opts []Option
	for i := 1; i <= n; i++ {
		label := fmt.Sprintf("%dc", i)
		opts = append(opts, Option{Label: label, Value: label})
	}
	if maxColors > 6 {
		opts = append(opts, Option{
			Label: fmt.Sprintf("7–%dc", maxColors),
			Value: fmt.Sprintf("7-%dc", maxColors),
		})
	}
	return opts
}

func tierButtons(cfg *tenant.ShopConfig) []Option {
	if !cfg.Garments.TiersEnabled || len(cfg.Garments.Tiers) == 0 {
		return nil
	}
	var opts []Option
	for _, key := range cfg.Garments.TierOrder {
		tier := cfg.Garments.Tiers[key]
		opts = append(opts, Option{
			Label: fmt.Sprintf("%s ($%s)", tier.Label, tier.BlankPrice.StringFixed(2)),
			Value: key,
		})
	}
	return opts
}

func yesNoButtons() []Option {
	return []Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}
}

func confirmButtons() []Option {
	return []Option{{Label: "Compute", Value: "yes"}, {Label: "Start Over", Value: "no"}}
}

// summaryText renders the confirm-step recap line.
func summaryText(qty int, locations []domain.PrintLocation, cfg *tenant.ShopConfig, chosenTier string) string {
	parts := make([]string, 0, len(locations))
	for _, loc := range locations {
		parts = append(parts, fmt.Sprintf("%s %dc", strings.ReplaceAll(loc.Location, "_", " "), loc.Colors))
	}
	locs := strings.Join(parts, ", ")
	if cfg.Garments.TiersEnabled && chosenTier != "" {
		label := chosenTier
		if tier, ok := cfg.Garments.Tiers[chosenTier]; ok {
			label = tier.Label
		}
		return fmt.Sprintf("Summary ➜ Qty %d, %s, Shirt: %s. Compute?", qty, locs, label)
	}
	return fmt.Sprintf("Summary ➜ Qty %d, %s. Compute?", qty, locs)
}

// quoteLines renders the computed quote reply.
func quoteLines(result *domain.QuoteResult) string {
	return strings.Join([]string{
		"Per-shirt print: $" + pricing.Cents(result.PerUnitPrint).StringFixed(2),
		"Blank: $" + pricing.Cents(result.BlankPerUnit).StringFixed(2),
		"Per-shirt out-the-door: $" + pricing.Cents(result.PerUnitTotal).StringFixed(2),
		fmt.Sprintf("Grand total (%d): $%s", result.Quantity, result.GrandTotal.StringFixed(2)),
	}, "\n")
}

func labelsToOptions(labels []string) []Option {
	opts := make([]Option, 0, len(labels))
	for _, l := range labels {
		opts = append(opts, Option{Label: l, Value: l})
	}
	return opts
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
