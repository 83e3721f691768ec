package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/jkindrix/shopquote/internal/errors"
	"github.com/jkindrix/shopquote/internal/middleware"
	"github.com/jkindrix/shopquote/internal/validation"
)

// writeJSON writes data as a JSON response. Encoding failures after the
// status line are logged, not surfaced.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set(middleware.RequestIDHeader, id)
	}
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Debug("failed to write JSON response", zap.Error(err))
	}
}

// writeError writes the standard `{"ok": false, "error": {...}}` envelope.
// Non-application errors are masked as internal.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		h.logger.Error("unclassified handler error", zap.Error(err))
		appErr = apperrors.InternalError("Something went wrong. Please try again.", err)
	}
	if !appErr.IsUserError() {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(appErr),
		)
	}
	h.writeJSON(w, r, appErr.HTTPStatus(), appErr.ToResponse())
}

// successEnvelope mirrors the error envelope for plain acknowledgements.
type successEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) writeSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	h.writeJSON(w, r, http.StatusOK, successEnvelope{OK: true, Message: message, Data: data})
}

// decodeJSON decodes a request body into dst. An empty body yields the
// zero value; malformed JSON is a validation error.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, new(*http.MaxBytesError)):
		return apperrors.New(apperrors.CodeValidation, "Request body too large")
	default:
		return apperrors.New(apperrors.CodeInvalidFormat, "Invalid JSON body")
	}
}

// validationError folds field-level validation errors into the standard
// envelope, keeping the first field's message as the headline.
func validationError(errs validation.ValidationErrors) *apperrors.Error {
	if !errs.HasErrors() {
		return nil
	}
	first := errs[0]
	return apperrors.New(apperrors.CodeValidation, first.Field+" "+first.Message)
}

// num formats a decimal for JSON output as a bare number with two
// fractional digits, matching what deployed clients parse.
func num(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// pctNum keeps full precision for rates (0.4, 0.15).
func pctNum(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
