package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/circuitbreaker"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks,omitempty"`
}

// ComponentHealth reports one dependency's state.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HandleHealth reports overall service health. The database is the only
// critical dependency; everything else runs from tenant files in memory.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status: "ok",
		Checks: make(map[string]ComponentHealth),
	}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			resp.Checks["database"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			h.logger.Error("database health check failed", zap.Error(err))
		} else {
			resp.Checks["database"] = ComponentHealth{Status: "healthy"}
		}
	}

	if h.mailer != nil {
		state := h.mailer.Breaker().State()
		if state == circuitbreaker.StateOpen {
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
			resp.Checks["email"] = ComponentHealth{
				Status:  "degraded",
				Message: "circuit breaker open",
			}
		} else {
			resp.Checks["email"] = ComponentHealth{Status: "healthy"}
		}
	}

	h.writeJSON(w, r, status, resp)
}

// HandleReadiness is the orchestrator readiness probe. It fails during
// shutdown drain and when the database cannot be reached.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("readiness check failed", zap.Error(err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// HandlePing answers the plain-text liveness ping kept for old monitors.
func (h *Handler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// HandleAPIPing is the JSON ping.
func (h *Handler) HandleAPIPing(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"pong": true})
}

// HandleVersion answers deploy smoke checks.
func (h *Handler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
