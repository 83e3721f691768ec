package validation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Hard input limits, applied before any tenant-specific caps.
const (
	// MaxQuoteQuantity keeps request quantities within sane bounds.
	MaxQuoteQuantity = 1_000_000
	// MaxColorsPerPlacement is the absolute color count ceiling.
	MaxColorsPerPlacement = 12
	// MaxPlacements bounds the number of print locations per request.
	MaxPlacements = 10
	// MaxLocationNameLength bounds custom placement names.
	MaxLocationNameLength = 64
)

// maxManualGarmentCost is the ceiling for operator-entered garment costs.
var maxManualGarmentCost = decimal.NewFromInt(100)

// QuoteValidator validates console quote requests.
type QuoteValidator struct {
	*Validator
}

// NewQuoteValidator creates a console quote validator.
func NewQuoteValidator() *QuoteValidator {
	return &QuoteValidator{Validator: New()}
}

// ValidateQuantity checks the garment quantity.
func (v *QuoteValidator) ValidateQuantity(quantity int) {
	if quantity < 0 {
		v.AddError("quantity", "must not be negative", CodeInvalidValue)
		return
	}
	if quantity > MaxQuoteQuantity {
		v.AddError("quantity", fmt.Sprintf("must be at most %d", MaxQuoteQuantity), CodeInvalidValue)
	}
}

// ValidatePlacement checks a single print location entry.
func (v *QuoteValidator) ValidatePlacement(index int, name string, colors int) {
	field := fmt.Sprintf("placements[%d]", index)

	if name == "" {
		v.AddError(field+".name", "is required", CodeRequired)
	}
	v.MaxLength(field+".name", name, MaxLocationNameLength)
	v.SafeString(field+".name", name)
	v.NoScriptTags(field+".name", name)

	if colors < 0 || colors > MaxColorsPerPlacement {
		v.AddError(field+".colors", fmt.Sprintf("must be between 0 and %d", MaxColorsPerPlacement), CodeInvalidValue)
	}
}

// ValidatePlacementCount checks the total number of placements.
func (v *QuoteValidator) ValidatePlacementCount(count int) {
	if count > MaxPlacements {
		v.AddError("placements", fmt.Sprintf("must have at most %d entries", MaxPlacements), CodeInvalidValue)
	}
}

// ValidateManualGarmentCost checks an operator-entered garment cost.
func (v *QuoteValidator) ValidateManualGarmentCost(cost decimal.Decimal) {
	if cost.IsNegative() {
		v.AddError("manual_garment_cost", "must not be negative", CodeInvalidValue)
		return
	}
	if cost.GreaterThan(maxManualGarmentCost) {
		v.AddError("manual_garment_cost", fmt.Sprintf("must be at most %s", maxManualGarmentCost.String()), CodeInvalidValue)
	}
}

// ValidateUpsellDimensions checks upsell print dimensions.
func (v *QuoteValidator) ValidateUpsellDimensions(widthIn, heightIn decimal.Decimal) {
	if widthIn.IsNegative() {
		v.AddError("upsell.width_in", "must not be negative", CodeInvalidValue)
	}
	if heightIn.IsNegative() {
		v.AddError("upsell.height_in", "must not be negative", CodeInvalidValue)
	}
}

// Pagination bounds for archive listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// PaginationParams holds normalized pagination values.
type PaginationParams struct {
	Limit  int
	Offset int
}

// NormalizePagination clamps limit and offset into allowed bounds.
func NormalizePagination(limit, offset int) PaginationParams {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}
}
