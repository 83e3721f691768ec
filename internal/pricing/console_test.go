package pricing

import (
	"testing"

	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/errors"
)

func TestComputeConsoleQuote(t *testing.T) {
	table := testTable()
	cfg := testConfig()

	in := &ConsoleInput{
		Quantity:   50,
		Locations:  []domain.PrintLocation{{Location: "front", Colors: 2}},
		GarmentKey: "tee",
		Extras:     map[string]bool{"fold_bag": true, "rush": true},
	}
	q, err := ComputeConsoleQuote(cfg, table, in)
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}

	// garment 2.00 cost, 40% markup -> 2.80 client; print 2.15/unit.
	if q.GarmentCostPerUnit.String() != "2" {
		t.Errorf("GarmentCostPerUnit = %s, want 2", q.GarmentCostPerUnit)
	}
	if q.GarmentClientPerUnit.String() != "2.8" {
		t.Errorf("GarmentClientPerUnit = %s, want 2.8", q.GarmentClientPerUnit)
	}
	if q.PrintPerUnit.String() != "2.15" {
		t.Errorf("PrintPerUnit = %s, want 2.15", q.PrintPerUnit)
	}
	if q.CostSubtotal.String() != "207.5" {
		t.Errorf("CostSubtotal = %s, want 207.5", q.CostSubtotal)
	}

	// screens: 2 colors + underbase = 3 screens at 25.00
	if q.Screens == nil || q.Screens.Count != 3 || q.Screens.Total.String() != "75" {
		t.Fatalf("Screens = %+v", q.Screens)
	}
	if q.Screens.Waived {
		t.Error("screens waived below threshold")
	}

	// fold_bag 0.25 x 50 = 12.50
	if line := q.Extras["fold_bag"]; line.Total.String() != "12.5" {
		t.Errorf("fold_bag total = %s, want 12.5", line.Total)
	}
	if line := q.Extras["names"]; !line.Total.IsZero() {
		t.Errorf("names total = %s, want 0", line.Total)
	}

	// client subtotal 247.50 + 12.50 extras + 75 screens = 335.00
	if q.ClientSubtotal.String() != "335" {
		t.Errorf("ClientSubtotal = %s, want 335", q.ClientSubtotal)
	}
	// rush 20% applies to the whole client subtotal
	if !q.RushApplied || q.RushAmount.String() != "67" {
		t.Errorf("RushAmount = %s (applied=%v), want 67", q.RushAmount, q.RushApplied)
	}
	if q.ClientGrandTotal.String() != "402" {
		t.Errorf("ClientGrandTotal = %s, want 402", q.ClientGrandTotal)
	}
	// cost side never includes markup, extras, screens, or rush
	if q.CostGrandTotal.String() != "207.5" {
		t.Errorf("CostGrandTotal = %s, want 207.5", q.CostGrandTotal)
	}
	if q.Params.GarmentMode != domain.GarmentPreset || q.Params.GarmentKey != "tee" {
		t.Errorf("Params = %+v", q.Params)
	}
}

func TestConsoleScreenWaivers(t *testing.T) {
	table := testTable()
	cfg := testConfig()

	base := func() *ConsoleInput {
		return &ConsoleInput{
			Quantity:   150,
			Locations:  []domain.PrintLocation{{Location: "front", Colors: 2}},
			GarmentKey: "tee",
		}
	}

	q, err := ComputeConsoleQuote(cfg, table, base())
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}
	if !q.Screens.Waived || q.Screens.WaivedBy != domain.WaivedByQuantity {
		t.Errorf("Screens = %+v, want waived by qty at 150", q.Screens)
	}
	if !q.Screens.Total.IsZero() {
		t.Errorf("waived total = %s, want 0", q.Screens.Total)
	}

	in := base()
	in.Quantity = 50
	in.AdminWaiveScreens = true
	q, err = ComputeConsoleQuote(cfg, table, in)
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}
	if !q.Screens.Waived || q.Screens.WaivedBy != domain.WaivedByAdmin {
		t.Errorf("Screens = %+v, want waived by admin", q.Screens)
	}

	// screen count capped at max_screens
	in = base()
	in.Quantity = 50
	in.Locations = []domain.PrintLocation{
		{Location: "front", Colors: 3},
		{Location: "back", Colors: 3},
		{Location: "left_sleeve", Colors: 3},
	}
	q, err = ComputeConsoleQuote(cfg, table, in)
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}
	// 3x(3 colors + underbase) = 12, capped to 10
	if q.Screens.Count != 10 {
		t.Errorf("capped screen count = %d, want 10", q.Screens.Count)
	}
}

func TestConsoleGarmentModes(t *testing.T) {
	table := testTable()
	cfg := testConfig()
	locs := []domain.PrintLocation{{Location: "front", Colors: 1}}

	q, err := ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Quantity: 50, Locations: locs, CustomerSupplied: true,
	})
	if err != nil {
		t.Fatalf("customer supplied: %v", err)
	}
	if q.Params.GarmentMode != domain.GarmentCustomerSupplied || !q.GarmentCostPerUnit.IsZero() {
		t.Errorf("Params = %+v, garment = %s", q.Params, q.GarmentCostPerUnit)
	}

	manual := dec("4.10")
	q, err = ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Quantity: 50, Locations: locs,
		ManualGarmentCost: &manual, ManualGarmentLabel: "Vintage Wash",
	})
	if err != nil {
		t.Fatalf("manual cost: %v", err)
	}
	if q.Params.GarmentMode != domain.GarmentCustom || q.Params.GarmentLabel != "Vintage Wash" {
		t.Errorf("Params = %+v", q.Params)
	}
	// 4.10 * 1.4 = 5.74
	if q.GarmentClientPerUnit.String() != "5.74" {
		t.Errorf("GarmentClientPerUnit = %s, want 5.74", q.GarmentClientPerUnit)
	}

	_, err = ComputeConsoleQuote(cfg, table, &ConsoleInput{Quantity: 50, Locations: locs})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("missing garment err = %v, want VALIDATION_ERROR", err)
	}

	_, err = ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Quantity: 50, Locations: locs, GarmentKey: "nope",
	})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("unknown garment err = %v, want VALIDATION_ERROR", err)
	}
}

func TestConsoleUpsellOnly(t *testing.T) {
	table := testTable()
	cfg := testConfig()

	q, err := ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Upsell: &UpsellInput{Key: "foil", WidthIn: dec("12"), HeightIn: dec("12"), Qty: 10},
	})
	if err != nil {
		t.Fatalf("upsell only: %v", err)
	}
	if q.Upsell == nil || q.Upsell.Total.String() != "12.5" {
		t.Fatalf("Upsell = %+v", q.Upsell)
	}
	if q.ClientSubtotal.String() != "12.5" || q.ClientGrandTotal.String() != "12.5" {
		t.Errorf("totals = %s / %s, want 12.5", q.ClientSubtotal, q.ClientGrandTotal)
	}
	if !q.CostSubtotal.IsZero() || len(q.Locations) != 0 {
		t.Errorf("print side should be empty: %+v", q)
	}

	_, err = ComputeConsoleQuote(cfg, table, &ConsoleInput{})
	if !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("empty request err = %v, want VALIDATION_ERROR", err)
	}
}

func TestConsoleExtrasWithoutPlacements(t *testing.T) {
	table := testTable()
	cfg := testConfig()

	// A quantity plus an upsell but no placements: extras still charge per
	// unit even though nothing is screen printed.
	q, err := ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Quantity: 50,
		Extras:   map[string]bool{"fold_bag": true},
		Upsell:   &UpsellInput{Key: "foil", WidthIn: dec("12"), HeightIn: dec("12"), Qty: 10},
	})
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}
	if line := q.Extras["fold_bag"]; line.Total.String() != "12.5" {
		t.Errorf("fold_bag total = %s, want 12.5", line.Total)
	}
	// 12.50 upsell + 12.50 extras; no garment, print, or screen charges.
	if q.ClientSubtotal.String() != "25" {
		t.Errorf("ClientSubtotal = %s, want 25", q.ClientSubtotal)
	}
	if !q.CostSubtotal.IsZero() || q.Screens != nil {
		t.Errorf("print side should be empty: %+v", q)
	}

	// Without a quantity the flags are inert.
	q, err = ComputeConsoleQuote(cfg, table, &ConsoleInput{
		Extras: map[string]bool{"fold_bag": true},
		Upsell: &UpsellInput{Key: "foil", WidthIn: dec("12"), HeightIn: dec("12"), Qty: 10},
	})
	if err != nil {
		t.Fatalf("ComputeConsoleQuote: %v", err)
	}
	if line := q.Extras["fold_bag"]; !line.Total.IsZero() {
		t.Errorf("fold_bag total = %s, want 0 with no quantity", line.Total)
	}
}
