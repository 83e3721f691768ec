package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/tenant"
	"github.com/jkindrix/shopquote/internal/validation"
)

type archivedQuoteDTO struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Quantity    int         `json:"quantity"`
	ClientTotal json.Number `json:"client_total"`
	CostTotal   json.Number `json:"cost_total"`
	Margin      json.Number `json:"margin"`
	CreatedAt   time.Time   `json:"created_at"`
}

type archivedQuotesResponse struct {
	OK     bool               `json:"ok"`
	Tenant string             `json:"tenant"`
	Count  int                `json:"count"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Quotes []archivedQuoteDTO `json:"quotes"`
}

// HandleListQuotes returns archived quotes with margins for a tenant:
// GET /admin/quotes/{tenant}?limit=&offset=. Admin-key gated by the route.
func (h *Handler) HandleListQuotes(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeExternalService, "Quote archive is not configured"))
		return
	}
	tenantID := chi.URLParam(r, "tenant")
	if err := tenant.ValidateID(tenantID); err != nil {
		h.writeError(w, r, apperrors.TenantNotFound(tenantID))
		return
	}

	page := validation.NormalizePagination(queryInt(r, "limit"), queryInt(r, "offset"))
	records, err := h.archive.ListByTenant(r.Context(), tenantID, page.Limit, page.Offset)
	if err != nil {
		h.writeError(w, r, apperrors.DatabaseError("handler.HandleListQuotes", err))
		return
	}

	resp := archivedQuotesResponse{
		OK:     true,
		Tenant: tenantID,
		Count:  len(records),
		Limit:  page.Limit,
		Offset: page.Offset,
		Quotes: make([]archivedQuoteDTO, 0, len(records)),
	}
	for _, rec := range records {
		resp.Quotes = append(resp.Quotes, archivedQuoteDTO{
			ID:          rec.ID.String(),
			Source:      rec.Source,
			Quantity:    rec.Quantity,
			ClientTotal: num(rec.ClientTotal),
			CostTotal:   num(rec.CostTotal),
			Margin:      num(rec.Margin()),
			CreatedAt:   rec.CreatedAt,
		})
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// queryInt reads an integer query parameter, treating absent or malformed
// values as zero so pagination normalization applies its defaults.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
