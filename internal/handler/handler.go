// Package handler provides the HTTP API: chat turns, console quoting, PDF
// download, email estimates, and the operational endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/clock"
	"github.com/jkindrix/shopquote/internal/conversation"
	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/email"
	"github.com/jkindrix/shopquote/internal/metrics"
	"github.com/jkindrix/shopquote/internal/middleware"
	"github.com/jkindrix/shopquote/internal/sanitize"
	"github.com/jkindrix/shopquote/internal/tenant"
)

// Pinger checks database connectivity for health probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CookieConfig controls the chat session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Handler holds all HTTP handlers and their dependencies. Archive, Mailer,
// and DB are optional; the matching endpoints degrade or disappear when
// they are nil.
type Handler struct {
	tenants *tenant.Store
	chat    *conversation.Service
	archive domain.QuoteArchive
	mailer  *email.Client
	db      Pinger
	ready   func() bool

	metrics *metrics.Metrics
	events  *metrics.EventLogger
	admin   *middleware.AdminAuth
	logCtl  http.Handler

	cookie   CookieConfig
	redactor *sanitize.Redactor
	clk      clock.Clock
	logger   *zap.Logger
}

// Config bundles the Handler dependencies.
type Config struct {
	Tenants *tenant.Store
	Chat    *conversation.Service
	Archive domain.QuoteArchive
	Mailer  *email.Client
	DB      Pinger
	Ready   func() bool

	Metrics  *metrics.Metrics
	Events   *metrics.EventLogger
	Admin    *middleware.AdminAuth
	LogLevel http.Handler

	Cookie CookieConfig
	// RedactLogs masks emails and phone numbers in logged chat messages.
	RedactLogs bool
	Clock      clock.Clock
	Logger     *zap.Logger
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		panic("logger is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "sid"
	}
	if cfg.Cookie.MaxAge <= 0 {
		cfg.Cookie.MaxAge = 30 * 24 * time.Hour
	}
	return &Handler{
		tenants:  cfg.Tenants,
		chat:     cfg.Chat,
		archive:  cfg.Archive,
		mailer:   cfg.Mailer,
		db:       cfg.DB,
		ready:    cfg.Ready,
		metrics:  cfg.Metrics,
		events:   cfg.Events,
		admin:    cfg.Admin,
		logCtl:   cfg.LogLevel,
		cookie:   cfg.Cookie,
		redactor: sanitize.NewRedactor(cfg.RedactLogs),
		clk:      cfg.Clock,
		logger:   cfg.Logger,
	}
}

// Routes registers all routes on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/ask/{tenant}", h.HandleAsk)
	r.Post("/quote", h.HandleLegacyQuote)
	r.Post("/api/quote/{tenant}", h.HandleConsoleQuote)
	r.Post("/api/download_quote/{tenant}", h.HandleDownloadQuote)
	r.Post("/api/email-estimate", h.HandleEmailEstimate)

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReadiness)
	r.Get("/ping", h.HandlePing)
	r.Get("/api/ping", h.HandleAPIPing)
	r.Get("/__version", h.HandleVersion)

	if h.admin != nil {
		r.With(h.admin.Require).Get("/admin/quotes/{tenant}", h.HandleListQuotes)
		if h.logCtl != nil {
			r.With(h.admin.Require).Handle("/admin/loglevel", h.logCtl)
		}
	}
}
