// Package pdf renders quote estimates as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/jkindrix/shopquote/internal/domain"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/textparse"
)

// Input holds everything that goes on a quote PDF. Quote and Upsell are both
// optional but at least one must be present.
type Input struct {
	TenantID    string
	Config      *tenant.ShopConfig
	Quote       *domain.QuoteResult
	Tier        string
	Upsell      *domain.UpsellResult
	GeneratedAt time.Time
}

const (
	xMargin  = 0.75 // inches
	lineFont = "Helvetica"
)

// Render produces the PDF bytes for a quote.
func Render(in Input) ([]byte, error) {
	if in.Quote == nil && in.Upsell == nil {
		return nil, apperrors.ValidationFailed("Nothing to render (no valid placements or upsell).")
	}

	doc := fpdf.New("P", "in", "Letter", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	y := 0.9

	brand := in.Config.BrandName
	if brand == "" {
		brand = in.TenantID
	}

	doc.SetFont(lineFont, "B", 16)
	doc.Text(xMargin+1.6, y, tr(fmt.Sprintf("%s — Quote", brand)))
	y += 0.25
	doc.SetFont(lineFont, "", 10)
	doc.Text(xMargin+1.6, y, "Generated: "+in.GeneratedAt.UTC().Format("2006-01-02 15:04Z"))
	y += 0.4

	y = writeContactLine(doc, tr, in.Config, y)

	if in.Quote != nil {
		y = writeScreenPrintSection(doc, tr, in, y)
	}

	if in.Upsell != nil {
		y = writeUpsellSection(doc, tr, in.Upsell, y)
	}

	total := grandTotal(in)
	doc.SetFont(lineFont, "B", 12)
	doc.Text(xMargin, y, "Estimated grand total: $"+total)
	y += 0.32

	doc.SetFont(lineFont, "I", 9)
	doc.Text(xMargin, y, tr("Estimate only — taxes, add-ons, and artwork review may apply. Thanks for the opportunity!"))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, apperrors.InternalError("pdf render failed", err)
	}
	return buf.Bytes(), nil
}

func writeContactLine(doc *fpdf.Fpdf, tr func(string) string, cfg *tenant.ShopConfig, y float64) float64 {
	email := cfg.UI.SupportEmail
	phone := cfg.Phone
	if phone == "" {
		phone = cfg.UI.SupportPhone
	}
	website := cfg.Website
	if website == "" {
		website = cfg.UI.ShopURL
	}

	var bits []string
	for _, b := range []string{email, phone, website} {
		if b != "" {
			bits = append(bits, b)
		}
	}
	if len(bits) == 0 {
		return y
	}

	doc.SetFont(lineFont, "", 10)
	line := "Contact: "
	for i, b := range bits {
		if i > 0 {
			line += "  •  "
		}
		line += b
	}
	doc.Text(xMargin, y, tr(line))
	return y + 0.3
}

func writeScreenPrintSection(doc *fpdf.Fpdf, tr func(string) string, in Input, y float64) float64 {
	q := in.Quote

	doc.SetFont(lineFont, "B", 12)
	doc.Text(xMargin, y, fmt.Sprintf("Quantity: %d", q.Quantity))
	y += 0.25

	if in.Config.Garments.TiersEnabled && in.Tier != "" {
		label := in.Tier
		if t, ok := in.Config.Garments.Tiers[in.Tier]; ok && t.Label != "" {
			label = t.Label
		}
		doc.SetFont(lineFont, "", 10)
		doc.Text(xMargin, y, "Garment: "+tr(label))
		y += 0.22
	}

	doc.SetFont(lineFont, "B", 11)
	doc.Text(xMargin, y, "Print Locations")
	y += 0.2
	doc.SetFont(lineFont, "", 10)
	for _, loc := range q.Locations {
		doc.Text(xMargin, y, tr(fmt.Sprintf("• %s — %d color(s) @ $%s/shirt",
			textparse.LabelFor(loc.Location), loc.Colors, loc.PerUnitRun.StringFixed(2))))
		y += 0.2
	}
	y += 0.1

	doc.SetFont(lineFont, "B", 11)
	doc.Text(xMargin, y, "Screen Print Pricing")
	y += 0.22
	doc.SetFont(lineFont, "", 10)
	doc.Text(xMargin, y, "Per-shirt print: $"+q.PerUnitPrint.StringFixed(2))
	y += 0.18
	doc.Text(xMargin, y, "Blank garment: $"+q.BlankPerUnit.StringFixed(2))
	y += 0.18
	doc.Text(xMargin, y, "Per-shirt total: $"+q.PerUnitTotal.StringFixed(2))
	y += 0.28

	return y
}

func writeUpsellSection(doc *fpdf.Fpdf, tr func(string) string, ups *domain.UpsellResult, y float64) float64 {
	doc.SetFont(lineFont, "B", 11)
	doc.Text(xMargin, y, "Upsell Items")
	y += 0.22
	doc.SetFont(lineFont, "", 10)
	doc.Text(xMargin, y, tr(fmt.Sprintf("• %s — %s\" × %s\", Qty %d",
		ups.Label, ups.WidthIn.StringFixed(1), ups.HeightIn.StringFixed(1), ups.Qty)))
	y += 0.18
	doc.Text(xMargin, y, tr(fmt.Sprintf("  Area: %s sq ft  •  Rate: $%s/sq ft",
		ups.AreaSqFt.StringFixed(2), ups.RatePerSqFt.StringFixed(2))))
	y += 0.18
	doc.Text(xMargin, y, "  Line total: $"+ups.Total.StringFixed(2))
	y += 0.28

	return y
}

func grandTotal(in Input) string {
	total := decimal.Zero
	if in.Quote != nil {
		total = total.Add(in.Quote.GrandTotal)
	}
	if in.Upsell != nil {
		total = total.Add(in.Upsell.Total)
	}
	return total.StringFixed(2)
}
