package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/domain"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/validation"
)

// placementDTO accepts both the current ("name") and older ("location")
// field names sent by deployed console builds.
type placementDTO struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Colors   int    `json:"colors"`
}

func (p placementDTO) name() string {
	n := p.Name
	if n == "" {
		n = p.Location
	}
	return strings.ToLower(strings.TrimSpace(n))
}

type upsellDTO struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	WidthIn  decimal.Decimal `json:"width_in"`
	HeightIn decimal.Decimal `json:"height_in"`
	Qty      int             `json:"qty"`
}

type consoleQuoteRequest struct {
	Quantity                int              `json:"quantity"`
	Placements              []placementDTO   `json:"placements"`
	Locations               []placementDTO   `json:"locations"`
	GarmentKey              string           `json:"garment_key"`
	CustomerSuppliedGarment bool             `json:"customer_supplied_garment"`
	ManualGarmentCost       *decimal.Decimal `json:"manual_garment_cost"`
	ManualGarmentLabel      string           `json:"manual_garment_label"`
	Extras                  map[string]bool  `json:"extras"`
	AdminWaiveScreens       bool             `json:"adminWaiveScreens"`
	Upsell                  *upsellDTO       `json:"upsell"`
}

func (r *consoleQuoteRequest) placements() []placementDTO {
	if len(r.Placements) > 0 {
		return r.Placements
	}
	return r.Locations
}

// HandleConsoleQuote prices a console request: POST /api/quote/{tenant}.
func (h *Handler) HandleConsoleQuote(w http.ResponseWriter, r *http.Request) {
	if h.chat != nil {
		if expired := h.chat.SweepExpired(); expired > 0 && h.metrics != nil {
			h.metrics.RecordSessionsExpired(expired)
		}
	}

	tenantID := chi.URLParam(r, "tenant")
	if err := tenant.ValidateID(tenantID); err != nil {
		h.writeError(w, r, apperrors.TenantNotFound(tenantID))
		return
	}

	var req consoleQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	in, err := h.consoleInput(r, &req)
	if err != nil {
		h.recordQuoteFailure(tenantID, "console", err)
		h.writeError(w, r, err)
		return
	}

	data, err := h.tenants.Data(tenantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	quote, err := pricing.ComputeConsoleQuote(data.Config, data.Pricing, in)
	if err != nil {
		h.recordQuoteFailure(tenantID, "console", err)
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordQuoteComputed(tenantID, "console")
	}
	if h.events != nil {
		h.events.QuoteComputed(tenantID, "console", quote.Quantity, quote.ClientGrandTotal.StringFixed(2))
	}
	h.archiveConsoleQuote(r, tenantID, quote)

	h.writeJSON(w, r, http.StatusOK, consoleQuoteResponse(quote))
}

// consoleInput validates the raw payload and normalizes it for the pricing
// engine. The admin screen waiver is honored only with a valid admin key.
func (h *Handler) consoleInput(r *http.Request, req *consoleQuoteRequest) (*pricing.ConsoleInput, error) {
	v := validation.NewQuoteValidator()
	v.ValidateQuantity(req.Quantity)

	raw := req.placements()
	v.ValidatePlacementCount(len(raw))

	locations := make([]domain.PrintLocation, 0, len(raw))
	for i, p := range raw {
		name := p.name()
		if name == "" {
			continue
		}
		v.ValidatePlacement(i, name, p.Colors)
		locations = append(locations, domain.PrintLocation{Location: name, Colors: p.Colors})
	}

	if req.ManualGarmentCost != nil {
		v.ValidateManualGarmentCost(*req.ManualGarmentCost)
	}
	if req.Upsell != nil {
		v.ValidateUpsellDimensions(req.Upsell.WidthIn, req.Upsell.HeightIn)
	}
	if err := validationError(v.Errors()); err != nil {
		return nil, err
	}

	waive := req.AdminWaiveScreens
	if waive && (h.admin == nil || !h.admin.Check(r)) {
		h.logger.Warn("screen waiver requested without admin key")
		waive = false
	}

	in := &pricing.ConsoleInput{
		Quantity:           req.Quantity,
		Locations:          locations,
		GarmentKey:         strings.TrimSpace(req.GarmentKey),
		CustomerSupplied:   req.CustomerSuppliedGarment,
		ManualGarmentCost:  req.ManualGarmentCost,
		ManualGarmentLabel: strings.TrimSpace(req.ManualGarmentLabel),
		Extras:             req.Extras,
		AdminWaiveScreens:  waive,
	}
	if req.Upsell != nil {
		in.Upsell = &pricing.UpsellInput{
			Key:      req.Upsell.Key,
			Label:    req.Upsell.Label,
			WidthIn:  req.Upsell.WidthIn,
			HeightIn: req.Upsell.HeightIn,
			Qty:      req.Upsell.Qty,
		}
	}
	return in, nil
}

func (h *Handler) recordQuoteFailure(tenantID, channel string, err error) {
	if h.metrics != nil {
		h.metrics.RecordQuoteError(tenantID, string(apperrors.GetCode(err)))
	}
	if h.events != nil {
		h.events.QuoteRejected(tenantID, channel, string(apperrors.GetCode(err)), err.Error())
	}
}

func (h *Handler) archiveConsoleQuote(r *http.Request, tenantID string, quote *domain.ConsoleQuote) {
	if h.archive == nil {
		return
	}
	rec := domain.NewQuoteRecord(tenantID, "console", quote.Quantity,
		quote.ClientGrandTotal, quote.CostGrandTotal, h.clk.NowUTC())
	if err := h.archive.Create(r.Context(), rec); err != nil {
		h.logger.Warn("failed to archive console quote",
			zap.String("tenant", tenantID),
			zap.Error(err),
		)
	}
}

// Response DTOs mirror the JSON shape the console front end consumes.

type locationLineDTO struct {
	Location    string      `json:"location"`
	Colors      int         `json:"colors"`
	PerShirtRun json.Number `json:"per_shirt_run"`
}

type consoleParamsDTO struct {
	GarmentKey       string      `json:"garment_key,omitempty"`
	GarmentLabel     string      `json:"garment_label,omitempty"`
	GarmentCost      json.Number `json:"garment_cost"`
	GarmentMarkupPct json.Number `json:"garment_markup_pct"`
	RushRate         json.Number `json:"rush_rate"`
	ColorsClamped    bool        `json:"colors_clamped"`
	GarmentMode      string      `json:"garment_mode,omitempty"`
}

type consoleCostsDTO struct {
	PrintPerShirt         json.Number `json:"print_per_shirt"`
	GarmentCostPerShirt   json.Number `json:"garment_cost_per_shirt"`
	GarmentClientPerShirt json.Number `json:"garment_client_per_shirt"`
	CostSubtotal          json.Number `json:"cost_subtotal"`
}

type consoleTotalsDTO struct {
	ClientSubtotal   json.Number `json:"client_subtotal"`
	ClientGrandTotal json.Number `json:"client_grand_total"`
	CostGrandTotal   json.Number `json:"cost_grand_total"`
}

type screenChargesDTO struct {
	Enabled        bool        `json:"enabled"`
	Count          int         `json:"count"`
	PricePerScreen json.Number `json:"price_per_screen"`
	Total          json.Number `json:"total"`
	Waived         bool        `json:"waived"`
	WaivedBy       string      `json:"waived_by,omitempty"`
	WaiveAtQty     int         `json:"waive_at_qty,omitempty"`
}

type upsellResultDTO struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	WidthIn     json.Number `json:"width_in"`
	HeightIn    json.Number `json:"height_in"`
	Qty         int         `json:"qty"`
	RatePerSqFt json.Number `json:"rate_per_sqft"`
	AreaSqFt    json.Number `json:"area_sqft"`
	Total       json.Number `json:"total"`
}

type consoleQuoteDTO struct {
	Quantity      int                    `json:"quantity"`
	Locations     []locationLineDTO      `json:"locations"`
	Params        consoleParamsDTO       `json:"params"`
	Costs         consoleCostsDTO        `json:"costs"`
	Extras        map[string]json.Number `json:"extras"`
	RushApplied   bool                   `json:"rush_applied"`
	RushAmount    json.Number            `json:"rush_amount"`
	Totals        consoleTotalsDTO       `json:"totals"`
	ScreenCharges *screenChargesDTO      `json:"screen_charges,omitempty"`
	Upsell        *upsellResultDTO       `json:"upsell,omitempty"`
}

func consoleQuoteResponse(q *domain.ConsoleQuote) consoleQuoteDTO {
	out := consoleQuoteDTO{
		Quantity:  q.Quantity,
		Locations: make([]locationLineDTO, 0, len(q.Locations)),
		Params: consoleParamsDTO{
			GarmentKey:       q.Params.GarmentKey,
			GarmentLabel:     q.Params.GarmentLabel,
			GarmentCost:      num(q.Params.GarmentCost),
			GarmentMarkupPct: pctNum(q.Params.GarmentMarkupPct),
			RushRate:         pctNum(q.Params.RushRate),
			ColorsClamped:    q.Params.ColorsClamped,
			GarmentMode:      string(q.Params.GarmentMode),
		},
		Costs: consoleCostsDTO{
			PrintPerShirt:         num(q.PrintPerUnit),
			GarmentCostPerShirt:   num(q.GarmentCostPerUnit),
			GarmentClientPerShirt: num(q.GarmentClientPerUnit),
			CostSubtotal:          num(q.CostSubtotal),
		},
		Extras:      make(map[string]json.Number, 2*len(q.Extras)),
		RushApplied: q.RushApplied,
		RushAmount:  num(q.RushAmount),
		Totals: consoleTotalsDTO{
			ClientSubtotal:   num(q.ClientSubtotal),
			ClientGrandTotal: num(q.ClientGrandTotal),
			CostGrandTotal:   num(q.CostGrandTotal),
		},
	}
	for _, loc := range q.Locations {
		out.Locations = append(out.Locations, locationLineDTO{
			Location:    loc.Location,
			Colors:      loc.Colors,
			PerShirtRun: num(loc.PerUnitRun),
		})
	}
	for key, line := range q.Extras {
		out.Extras[key+"_per_shirt"] = num(line.PerUnit)
		out.Extras[key+"_total"] = num(line.Total)
	}
	if q.Screens != nil {
		out.ScreenCharges = &screenChargesDTO{
			Enabled:        true,
			Count:          q.Screens.Count,
			PricePerScreen: num(q.Screens.PricePerScreen),
			Total:          num(q.Screens.Total),
			Waived:         q.Screens.Waived,
			WaivedBy:       string(q.Screens.WaivedBy),
			WaiveAtQty:     q.Screens.WaiveAtQty,
		}
	}
	if q.Upsell != nil {
		out.Upsell = upsellDTOFrom(q.Upsell)
	}
	return out
}

func upsellDTOFrom(u *domain.UpsellResult) *upsellResultDTO {
	return &upsellResultDTO{
		Key:         u.Key,
		Label:       u.Label,
		WidthIn:     pctNum(u.WidthIn),
		HeightIn:    pctNum(u.HeightIn),
		Qty:         u.Qty,
		RatePerSqFt: num(u.RatePerSqFt),
		AreaSqFt:    pctNum(u.AreaSqFt),
		Total:       num(u.Total),
	}
}
