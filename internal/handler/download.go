package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jkindrix/shopquote/internal/domain"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/pdf"
	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/tenant"
)

type downloadQuoteRequest struct {
	Quantity  int            `json:"quantity"`
	Locations []placementDTO `json:"locations"`
	Tier      string         `json:"tier"`
	Upsell    *upsellDTO     `json:"upsell"`
}

// HandleDownloadQuote regenerates the quote server side and streams it as a
// PDF: POST /api/download_quote/{tenant}. Totals are never trusted from the
// client; only quantity, placements, tier, and the upsell request ride in.
func (h *Handler) HandleDownloadQuote(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant")
	if err := tenant.ValidateID(tenantID); err != nil {
		h.writeError(w, r, apperrors.TenantNotFound(tenantID))
		return
	}

	var req downloadQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	hasPrint := req.Quantity > 0 && len(req.Locations) > 0
	if !hasPrint && req.Upsell == nil {
		h.writeError(w, r, apperrors.ValidationFailed("Missing or invalid quote data (need placements or upsell)"))
		return
	}

	data, err := h.tenants.Data(tenantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var quote *domain.QuoteResult
	if hasPrint {
		locations := make([]domain.PrintLocation, 0, len(req.Locations))
		for _, p := range req.Locations {
			if name := p.name(); name != "" {
				locations = append(locations, domain.PrintLocation{Location: name, Colors: p.Colors})
			}
		}
		capped, _ := pricing.ApplyColorCaps(data.Config, data.Pricing, locations)
		quote, err = pricing.ComputeQuoteTotal(data.Pricing, data.Config, req.Quantity, capped, req.Tier)
		if err != nil {
			if h.metrics != nil {
				h.metrics.RecordPDFRender(tenantID, false)
			}
			h.writeError(w, r, err)
			return
		}
	}

	var ups *domain.UpsellResult
	if req.Upsell != nil {
		ups = pricing.ComputeUpsell(data.Config, &pricing.UpsellInput{
			Key:      req.Upsell.Key,
			Label:    req.Upsell.Label,
			WidthIn:  req.Upsell.WidthIn,
			HeightIn: req.Upsell.HeightIn,
			Qty:      req.Upsell.Qty,
		})
	}

	body, err := pdf.Render(pdf.Input{
		TenantID:    tenantID,
		Config:      data.Config,
		Quote:       quote,
		Tier:        req.Tier,
		Upsell:      ups,
		GeneratedAt: h.clk.NowUTC(),
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordPDFRender(tenantID, false)
		}
		h.writeError(w, r, err)
		return
	}

	baseQty := req.Quantity
	if baseQty <= 0 {
		baseQty = 1
		if req.Upsell != nil && req.Upsell.Qty > 0 {
			baseQty = req.Upsell.Qty
		}
	}

	if h.metrics != nil {
		h.metrics.RecordPDFRender(tenantID, true)
	}
	if h.events != nil {
		h.events.PDFRendered(tenantID, baseQty, len(body))
	}

	filename := fmt.Sprintf("%s_quote_%d.pdf", tenantID, baseQty)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// sanitizeFilename strips characters that would break the header value.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\n', '\r':
			return -1
		}
		return r
	}, name)
}
