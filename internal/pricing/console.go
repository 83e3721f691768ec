package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// ConsoleInput is a normalized console quote request. Validation of raw
// payload values happens before this point; the engine only resolves prices.
type ConsoleInput struct {
	Quantity  int
	Locations []domain.PrintLocation

	GarmentKey         string
	CustomerSupplied   bool
	ManualGarmentCost  *decimal.Decimal
	ManualGarmentLabel string

	// Extras flags the per-unit adders by key, plus "rush".
	Extras map[string]bool

	AdminWaiveScreens bool
	Upsell            *UpsellInput
}

var one = decimal.NewFromInt(1)

// ComputeConsoleQuote prices a console request: garment with markup, print
// run charges, per-unit extras, one-time screen charges, an optional upsell
// line, and a rush surcharge on the client subtotal. Client-facing and
// shop-cost totals are computed side by side. A request may be print-only,
// upsell-only, or both; one of the two must be present.
func ComputeConsoleQuote(
	cfg *tenant.ShopConfig,
	table *tenant.PricingTable,
	in *ConsoleInput,
) (*domain.ConsoleQuote, error) {
	ups := ComputeUpsell(cfg, in.Upsell)
	hasPrint := in.Quantity > 0 && len(in.Locations) > 0
	if !hasPrint && ups == nil {
		return nil, errors.ValidationFailed("Missing quantity/placements or upsell item")
	}

	q := &domain.ConsoleQuote{
		Quantity: in.Quantity,
		Extras:   make(map[string]domain.ExtraLine, len(domain.ExtraKeys)),
		Upsell:   ups,
	}
	q.Params.GarmentMarkupPct = cfg.Console.GarmentMarkupPct

	qty := decimal.NewFromInt(int64(in.Quantity))
	printPerUnit := decimal.Zero
	garmentCost := decimal.Zero
	garmentClient := decimal.Zero
	screenTotal := decimal.Zero

	if hasPrint {
		capped, clamped := ApplyColorCaps(cfg, table, in.Locations)
		if len(capped) == 0 {
			return nil, errors.ValidationFailed("No valid placements after applying color caps")
		}
		q.Params.ColorsClamped = clamped

		if err := resolveGarment(cfg, in, q); err != nil {
			return nil, err
		}
		garmentCost = q.Params.GarmentCost
		garmentClient = garmentCost.Mul(one.Add(cfg.Console.GarmentMarkupPct))

		for _, loc := range capped {
			run, err := RunChargePerUnit(table, in.Quantity, loc.Colors)
			if err != nil {
				return nil, err
			}
			printPerUnit = printPerUnit.Add(run)
			q.Locations = append(q.Locations, domain.LocationCharge{
				Location:   loc.Location,
				Colors:     loc.Colors,
				PerUnitRun: Cents(run),
			})
		}

		if cfg.Console.Screens.Enabled {
			q.Screens, screenTotal = computeScreens(cfg, in, capped)
		}
	}

	costPerUnit := garmentCost.Add(printPerUnit)
	clientPerUnit := garmentClient.Add(printPerUnit)
	costSubtotal := decimal.Zero
	clientSubtotalBase := decimal.Zero
	if hasPrint {
		costSubtotal = costPerUnit.Mul(qty)
		clientSubtotalBase = clientPerUnit.Mul(qty)
	}

	// Extras need a quantity but not placements, so an upsell-only request
	// that still carries a quantity keeps its selected add-ons.
	hasQty := in.Quantity > 0
	extrasPerUnitSum := decimal.Zero
	for _, key := range domain.ExtraKeys {
		per := decimal.Zero
		if hasQty && in.Extras[key] {
			per = cfg.Console.Extras.PerUnit[key]
		}
		q.Extras[key] = domain.ExtraLine{
			PerUnit: Cents(per),
			Total:   Cents(per.Mul(qty)),
		}
		extrasPerUnitSum = extrasPerUnitSum.Add(per)
	}
	extrasTotal := decimal.Zero
	if hasQty {
		extrasTotal = extrasPerUnitSum.Mul(qty)
	}

	upsellTotal := decimal.Zero
	if ups != nil {
		upsellTotal = ups.Total
	}
	clientSubtotal := clientSubtotalBase.Add(extrasTotal).Add(screenTotal).Add(upsellTotal)

	rushRate := decimal.Zero
	if in.Extras["rush"] {
		rushRate = cfg.Console.Extras.RushRate
		q.RushApplied = true
	}
	rushAmount := clientSubtotal.Mul(rushRate)
	clientGrand := clientSubtotal.Mul(one.Add(rushRate))

	q.Params.RushRate = rushRate
	q.PrintPerUnit = Cents(printPerUnit)
	q.GarmentCostPerUnit = Cents(garmentCost)
	q.GarmentClientPerUnit = Cents(garmentClient)
	q.RushAmount = Cents(rushAmount)
	q.CostSubtotal = Cents(costSubtotal)
	q.ClientSubtotal = Cents(clientSubtotal)
	q.ClientGrandTotal = Cents(clientGrand)
	q.CostGrandTotal = Cents(costSubtotal)

	if !hasPrint {
		q.Params.GarmentMode = ""
		q.Params.GarmentLabel = ""
		q.Params.GarmentKey = ""
	}
	return q, nil
}

func resolveGarment(cfg *tenant.ShopConfig, in *ConsoleInput, q *domain.ConsoleQuote) error {
	switch {
	case in.CustomerSupplied:
		q.Params.GarmentMode = domain.GarmentCustomerSupplied
		q.Params.GarmentLabel = "Customer Supplied"
		q.Params.GarmentCost = decimal.Zero

	case in.ManualGarmentCost != nil:
		q.Params.GarmentMode = domain.GarmentCustom
		q.Params.GarmentCost = *in.ManualGarmentCost
		q.Params.GarmentLabel = in.ManualGarmentLabel
		if q.Params.GarmentLabel == "" {
			q.Params.GarmentLabel = "Custom garment"
		}

	default:
		garment, ok := cfg.Console.Garments[in.GarmentKey]
		if !ok {
			return errors.ValidationFailed("Select a garment (or check 'Customer is supplying')")
		}
		if !garment.Cost.IsPositive() {
			return errors.ValidationFailed("Invalid garment cost")
		}
		q.Params.GarmentMode = domain.GarmentPreset
		q.Params.GarmentKey = in.GarmentKey
		q.Params.GarmentLabel = garment.Label
		q.Params.GarmentCost = garment.Cost
	}
	return nil
}

// computeScreens counts one screen per color at each placement, plus one per
// placement for a white underbase when the shop counts those, capped at the
// configured maximum. The charge is waived entirely by an admin override or
// when quantity reaches the waive threshold.
func computeScreens(
	cfg *tenant.ShopConfig,
	in *ConsoleInput,
	locations []domain.PrintLocation,
) (*domain.ScreenCharges, decimal.Decimal) {
	sc := cfg.Console.Screens
	count := 0
	for _, loc := range locations {
		if loc.Colors > 0 {
			count += loc.Colors
			if sc.CountWhiteUnderbase {
				count++
			}
		}
	}
	if sc.MaxScreens > 0 && count > sc.MaxScreens {
		count = sc.MaxScreens
	}

	var waivedBy domain.ScreenWaiver
	switch {
	case in.AdminWaiveScreens:
		waivedBy = domain.WaivedByAdmin
	case sc.WaiveAtQty > 0 && in.Quantity >= sc.WaiveAtQty:
		waivedBy = domain.WaivedByQuantity
	}

	total := decimal.Zero
	if waivedBy == "" {
		total = sc.PricePerScreen.Mul(decimal.NewFromInt(int64(count)))
	}

	return &domain.ScreenCharges{
		Count:          count,
		PricePerScreen: Cents(sc.PricePerScreen),
		Total:          Cents(total),
		Waived:         waivedBy != "",
		WaivedBy:       waivedBy,
		WaiveAtQty:     sc.WaiveAtQty,
	}, total
}
