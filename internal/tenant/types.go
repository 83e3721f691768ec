// Package tenant loads and validates per-tenant data files: the pricing
// table, the shop configuration, and the FAQ set. Files are parsed into
// typed structs with all defaulting resolved once at load time; the rest of
// the application never re-derives defaults inline.
package tenant

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/domain"
)

// unboundedQty stands in for a missing max_qty.
const unboundedQty = 1_000_000_000

// PricingTable is a tenant's screen-print price book.
type PricingTable struct {
	GarmentBase decimal.Decimal
	MinQty      int
	MaxQty      int

	// SmallOrderMessage is shown when quantity is below MinQty. Resolved to
	// a default embedding MinQty when the tenant does not configure one.
	SmallOrderMessage string

	// Tiers maps color count to its quantity bands, sorted ascending by Lo.
	Tiers map[int][]domain.QuantityBand

	// MaxColors is the highest color count the table defines.
	MaxColors int
}

// Bands returns the band list for a color count.
func (p *PricingTable) Bands(colors int) ([]domain.QuantityBand, bool) {
	b, ok := p.Tiers[colors]
	return b, ok
}

// QuantityBandStarts returns the sorted lower bounds of the 1-color bands,
// used to derive quantity suggestion buttons.
func (p *PricingTable) QuantityBandStarts() []domain.QuantityBand {
	bands := p.Tiers[1]
	out := make([]domain.QuantityBand, len(bands))
	copy(out, bands)
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

// validate enforces the table construction invariants: for every color count,
// bands must not overlap and must cover MinQty through unbounded.
func (p *PricingTable) validate() error {
	for colors, bands := range p.Tiers {
		if len(bands) == 0 {
			return fmt.Errorf("color count %d has no bands", colors)
		}
		for i := 1; i < len(bands); i++ {
			if bands[i-1].Overlaps(bands[i]) {
				return fmt.Errorf("color count %d: bands %s and %s overlap",
					colors, bands[i-1], bands[i])
			}
			if bands[i-1].Open {
				return fmt.Errorf("color count %d: open band %s is not last",
					colors, bands[i-1])
			}
			if bands[i].Lo != bands[i-1].Hi+1 {
				return fmt.Errorf("color count %d: gap between bands %s and %s",
					colors, bands[i-1], bands[i])
			}
		}
		if bands[0].Lo > p.MinQty {
			return fmt.Errorf("color count %d: first band %s starts above min_qty %d",
				colors, bands[0], p.MinQty)
		}
		if !bands[len(bands)-1].Open {
			return fmt.Errorf("color count %d: last band %s is not open-ended",
				colors, bands[len(bands)-1])
		}
	}
	return nil
}

// GarmentTier is one entry of the optional good/better/best catalog.
type GarmentTier struct {
	Label      string
	BlankPrice decimal.Decimal
}

// Garments holds the garment pricing options of a shop.
type Garments struct {
	TiersEnabled bool
	Tiers        map[string]GarmentTier
	// TierOrder lists tier keys in display order: good/better/best first,
	// then any remaining keys alphabetically.
	TierOrder []string
	// SingleBlankPrice, when set, overrides the pricing table garment base.
	SingleBlankPrice *decimal.Decimal
}

// Printing holds placement and color limits for the chat flow.
type Printing struct {
	MaxColors  int
	Placements []string
}

// SmallOrderPolicy describes what a shop offers below its minimum.
type SmallOrderPolicy struct {
	Suggest string // "dtf", "embroidery", or "none"
	Link    string
	Label   string
	CTAGet  string
	CTAAlt  string
}

// UI holds presentation-facing fields the response builders need.
type UI struct {
	Greetings       []string
	SupportEmail    string
	SupportPhone    string
	ShopURL         string
	EnableBranching bool
	SmallOrder      SmallOrderPolicy
}

// ConsoleGarment is a preset garment in the console catalog.
type ConsoleGarment struct {
	Cost  decimal.Decimal
	Label string
}

// Extras holds per-unit adders and the rush surcharge rate.
type Extras struct {
	RushRate decimal.Decimal
	PerUnit  map[string]decimal.Decimal
}

// Screens holds one-time screen charge rules.
type Screens struct {
	Enabled             bool
	PricePerScreen      decimal.Decimal
	CountWhiteUnderbase bool
	WaiveAtQty          int // 0 = never waived by quantity
	MaxScreens          int // 0 = uncapped
}

// UpsellItem is an area-priced decoration in the upsell catalog.
type UpsellItem struct {
	Label       string
	RatePerSqFt decimal.Decimal
}

// Upsell holds the optional upsell module configuration.
type Upsell struct {
	Enabled   bool
	Precision int32
	Items     map[string]UpsellItem
}

// Console holds the one-shot pricing API configuration.
type Console struct {
	Garments              map[string]ConsoleGarment
	MaxColors             int // fallback cap, 0 = unset
	MaxColorsPerPlacement map[string]int
	Extras                Extras
	GarmentMarkupPct      decimal.Decimal
	Screens               Screens
	Upsell                Upsell
}

// ShopConfig is a tenant's resolved shop configuration.
type ShopConfig struct {
	BrandName string
	Phone     string
	Website   string
	LogoPath  string
	Printing  Printing
	UI        UI
	Garments  Garments
	Console   Console
}

// PlacementColorCap resolves the color cap for one placement: per-placement
// override, then the shop's printing max, then the console fallback.
func (c *ShopConfig) PlacementColorCap(loc string) int {
	if cap, ok := c.Console.MaxColorsPerPlacement[loc]; ok && cap > 0 {
		return cap
	}
	if c.Printing.MaxColors > 0 {
		return c.Printing.MaxColors
	}
	return c.Console.MaxColors
}

// FAQOption is one selectable answer of a branch entry.
type FAQOption struct {
	Label  string
	Answer string
}

// FAQEntry is one tenant FAQ item matched by trigger substrings.
type FAQEntry struct {
	ID       string
	Triggers []string
	Type     string // "branch" or empty for a plain answer
	Answer   string
	Action   string // "start_quote" triggers an embedded pricing lookup
	Prompt   string
	Options  []FAQOption
}

// Data bundles everything loaded for one tenant.
type Data struct {
	ID      string
	Pricing *PricingTable
	Config  *ShopConfig
	FAQ     []FAQEntry
}
