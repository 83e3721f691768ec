package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/jkindrix/shopquote/internal/email"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/validation"
)

const (
	defaultEstimateSubject = "Your Estimate"
	maxEmailSubjectLength  = 200
)

type emailEstimateRequest struct {
	CustomerEmail string `json:"customer_email"`
	Tenant        string `json:"tenant"`
	Subject       string `json:"subject"`
	HTMLBody      string `json:"html_body"`
	TextBody      string `json:"text_body"`
}

// HandleEmailEstimate sends a quote estimate to the customer via Postmark:
// POST /api/email-estimate.
func (h *Handler) HandleEmailEstimate(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeExternalService, "Email sending is not configured"))
		return
	}

	var req emailEstimateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	v := validation.New()
	v.Required("customer_email", req.CustomerEmail)
	v.Email("customer_email", req.CustomerEmail)
	v.MaxLength("subject", req.Subject, maxEmailSubjectLength)
	v.NoScriptTags("subject", req.Subject)
	if err := validationError(v.Errors()); err != nil {
		h.writeError(w, r, err)
		return
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = defaultEstimateSubject
	}
	textBody := req.TextBody
	if textBody == "" && req.HTMLBody == "" {
		h.writeError(w, r, apperrors.MissingField("text_body"))
		return
	}

	start := time.Now()
	err := h.mailer.Send(r.Context(), email.Message{
		To:       req.CustomerEmail,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: req.HTMLBody,
	})
	duration := time.Since(start)

	if h.metrics != nil {
		h.metrics.RecordEmailSend(emailOutcome(err), duration)
	}
	if h.events != nil {
		h.events.EstimateEmailed(req.Tenant, req.CustomerEmail, err == nil, duration)
	}

	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSuccess(w, r, "Email sent successfully", nil)
}

func emailOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsCode(err, apperrors.CodeCircuitOpen):
		return "circuit_open"
	case apperrors.IsCode(err, apperrors.CodeTimeout):
		return "timeout"
	default:
		return "failure"
	}
}
