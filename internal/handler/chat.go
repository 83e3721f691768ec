package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/conversation"
	"github.com/jkindrix/shopquote/internal/domain"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/pricing"
	"github.com/jkindrix/shopquote/internal/sanitize"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// legacyDefaultTenant is assumed when the compatibility endpoint gets no
// tenant field, matching what the oldest deployed widgets send.
const legacyDefaultTenant = "swx"

type askRequest struct {
	Message string `json:"message"`
	Tenant  string `json:"tenant"`
	Client  string `json:"client"`
}

// HandleAsk handles one chat turn for POST /api/ask/{tenant}.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	h.serveChatTurn(w, r, chi.URLParam(r, "tenant"))
}

// HandleLegacyQuote handles POST /quote, the pre-tenant-routing endpoint.
// The tenant rides in the body under "tenant" or "client".
func (h *Handler) HandleLegacyQuote(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	tenantID := req.Tenant
	if tenantID == "" {
		tenantID = req.Client
	}
	if tenantID == "" {
		tenantID = legacyDefaultTenant
	}
	h.respondChat(w, r, tenantID, req.Message)
}

func (h *Handler) serveChatTurn(w http.ResponseWriter, r *http.Request, tenantID string) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondChat(w, r, tenantID, req.Message)
}

func (h *Handler) respondChat(w http.ResponseWriter, r *http.Request, tenantID, message string) {
	if err := tenant.ValidateID(tenantID); err != nil {
		h.writeError(w, r, apperrors.TenantNotFound(tenantID))
		return
	}
	message = sanitize.Message(message)
	if message == "" {
		h.writeError(w, r, apperrors.MissingField("message"))
		return
	}

	sid, minted := h.sessionID(r)
	h.logger.Debug("chat turn",
		zap.String("tenant", tenantID),
		zap.String("message", h.redactor.Redact(message)),
	)

	resp, err := h.chat.Respond(tenantID, sid, message)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordTurn(tenantID, "error")
		}
		h.writeError(w, r, err)
		return
	}

	kind := turnKind(resp)
	if h.metrics != nil {
		h.metrics.RecordTurn(tenantID, kind)
		if minted {
			h.metrics.RecordSessionCreated()
		}
	}
	if h.events != nil {
		step := ""
		if resp.State != nil {
			step = string(resp.State.Step)
		}
		h.events.TurnHandled(tenantID, sid, kind, step)
	}
	if resp.Quote != nil {
		h.archiveChatQuote(r, tenantID, resp.Quote)
	}

	h.setSessionCookie(w, sid)
	h.writeJSON(w, r, http.StatusOK, resp)
}

// sessionID returns the sid cookie value, minting a fresh UUID when the
// cookie is absent or not a UUID.
func (h *Handler) sessionID(r *http.Request) (sid string, minted bool) {
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, false
		}
	}
	return uuid.NewString(), true
}

// setSessionCookie refreshes the sid cookie on every chat turn so active
// conversations never lose their session mid-quote.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
	})
}

func turnKind(resp *conversation.Response) string {
	switch {
	case resp.Quote != nil:
		return "quote"
	case resp.Type == "branch":
		return "branch"
	case resp.State != nil:
		return "state"
	default:
		return "answer"
	}
}

// archiveChatQuote reprices the finished chat quote and records it. Archive
// failures never affect the chat response.
func (h *Handler) archiveChatQuote(r *http.Request, tenantID string, payload *conversation.QuotePayload) {
	if h.archive == nil {
		return
	}
	data, err := h.tenants.Data(tenantID)
	if err != nil {
		return
	}
	locs := make([]domain.PrintLocation, 0, len(payload.Locations))
	for _, l := range payload.Locations {
		locs = append(locs, domain.PrintLocation{Location: l.Location, Colors: l.Colors})
	}
	result, err := pricing.ComputeQuoteTotal(data.Pricing, data.Config, payload.Quantity, locs, payload.Tier)
	if err != nil {
		return
	}
	rec := domain.NewQuoteRecord(tenantID, "chat", result.Quantity, result.GrandTotal, decimal.Zero, h.clk.NowUTC())
	if err := h.archive.Create(r.Context(), rec); err != nil {
		h.logger.Warn("failed to archive chat quote",
			zap.String("tenant", tenantID),
			zap.Error(err),
		)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordQuoteComputed(tenantID, "chat")
	}
	if h.events != nil {
		h.events.QuoteComputed(tenantID, "chat", result.Quantity, result.GrandTotal.StringFixed(2))
	}
}
