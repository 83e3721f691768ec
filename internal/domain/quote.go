// Package domain defines the core value types for screen-print quoting:
// pricing bands, print locations, quote results, and conversation sessions.
package domain

import (
	"github.com/shopspring/decimal"
)

// Canonical print locations. Tenants may restrict the set via their placement
// list, but these are the names the parsers and pricing engine speak.
const (
	LocationFront       = "front"
	LocationBack        = "back"
	LocationLeftSleeve  = "left_sleeve"
	LocationRightSleeve = "right_sleeve"
	LocationPocket      = "pocket"
)

// PrintLocation is a requested print position with its color count.
// A zero Colors value means the count has not been resolved yet.
type PrintLocation struct {
	Location string
	Colors   int
}

// LocationCharge is a priced print location inside a quote.
type LocationCharge struct {
	Location   string
	Colors     int
	PerUnitRun decimal.Decimal
}

// QuoteResult is the outcome of the chat-flow quote computation. All money
// fields carry exactly two fractional digits except PerUnitPrint components,
// which are rounded for display but summed at full precision upstream.
// A QuoteResult is never mutated after construction.
type QuoteResult struct {
	Quantity     int
	Locations    []LocationCharge
	PerUnitPrint decimal.Decimal
	BlankPerUnit decimal.Decimal
	PerUnitTotal decimal.Decimal
	GrandTotal   decimal.Decimal
}

// GarmentMode describes how the garment cost in a console quote was resolved.
type GarmentMode string

const (
	GarmentPreset           GarmentMode = "preset"
	GarmentCustom           GarmentMode = "custom"
	GarmentCustomerSupplied GarmentMode = "customer_supplied"
)

// ScreenWaiver records why one-time screen charges were waived.
type ScreenWaiver string

const (
	WaivedByAdmin    ScreenWaiver = "admin"
	WaivedByQuantity ScreenWaiver = "qty"
)

// ScreenCharges is the one-time screen setup fee block of a console quote.
type ScreenCharges struct {
	Count          int
	PricePerScreen decimal.Decimal
	Total          decimal.Decimal
	Waived         bool
	WaivedBy       ScreenWaiver
	WaiveAtQty     int
}

// UpsellResult is an area-priced decoration line (heat transfer and similar).
type UpsellResult struct {
	Key         string
	Label       string
	WidthIn     decimal.Decimal
	HeightIn    decimal.Decimal
	Qty         int
	RatePerSqFt decimal.Decimal
	AreaSqFt    decimal.Decimal
	Total       decimal.Decimal
}

// ExtraLine is one per-unit extra (fold/bag, names, ...) priced for a quote.
type ExtraLine struct {
	PerUnit decimal.Decimal
	Total   decimal.Decimal
}

// Extra keys recognized by the console quote computation.
var ExtraKeys = []string{"fold_bag", "names", "numbers", "heat_press", "tagging"}

// ConsoleParams echoes the resolved garment and surcharge parameters of a
// console quote so callers can render them without re-deriving config.
type ConsoleParams struct {
	GarmentKey       string
	GarmentLabel     string
	GarmentCost      decimal.Decimal
	GarmentMarkupPct decimal.Decimal
	RushRate         decimal.Decimal
	ColorsClamped    bool
	GarmentMode      GarmentMode
}

// ConsoleQuote is the extended console computation result. ClientSubtotal /
// ClientGrandTotal are the customer-facing figures (garment markup included);
// CostSubtotal / CostGrandTotal are the shop's internal cost used for margin
// reporting. The two must never be conflated.
type ConsoleQuote struct {
	Quantity  int
	Locations []LocationCharge
	Params    ConsoleParams

	PrintPerUnit         decimal.Decimal
	GarmentCostPerUnit   decimal.Decimal
	GarmentClientPerUnit decimal.Decimal

	Extras      map[string]ExtraLine
	RushApplied bool
	RushAmount  decimal.Decimal

	Screens *ScreenCharges
	Upsell  *UpsellResult

	CostSubtotal     decimal.Decimal
	ClientSubtotal   decimal.Decimal
	ClientGrandTotal decimal.Decimal
	CostGrandTotal   decimal.Decimal
}
