// Package main is the entry point for the ShopQuote server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/circuitbreaker"
	"github.com/jkindrix/shopquote/internal/clock"
	"github.com/jkindrix/shopquote/internal/config"
	"github.com/jkindrix/shopquote/internal/conversation"
	"github.com/jkindrix/shopquote/internal/database"
	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/email"
	"github.com/jkindrix/shopquote/internal/handler"
	"github.com/jkindrix/shopquote/internal/logging"
	"github.com/jkindrix/shopquote/internal/metrics"
	"github.com/jkindrix/shopquote/internal/middleware"
	"github.com/jkindrix/shopquote/internal/repository"
	"github.com/jkindrix/shopquote/internal/session"
	"github.com/jkindrix/shopquote/internal/shutdown"
	"github.com/jkindrix/shopquote/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.Zap()
	defer func() { _ = logger.Sync() }()

	logger.Info("starting ShopQuote server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Environment),
		zap.String("tenants_dir", cfg.Tenants.Dir),
	)

	m := metrics.NewMetrics()
	events := metrics.NewEventLogger(logger)
	clk := clock.New()

	coord := shutdown.NewCoordinator(shutdown.DefaultTimeout, logger)

	// Conversation state. Sessions expire on a fixed TTL from creation; the
	// sweeper also keeps the active-session gauge honest.
	tenants := tenant.NewStore(cfg.Tenants.Dir, logger)
	sessions := session.NewStore[*domain.QuoteSession](cfg.Session.TTL, clk, logger)
	branches := session.NewStore[*domain.PendingBranch](cfg.Session.TTL, clk, logger)

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		ticker := time.NewTicker(cfg.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				expired := sessions.Sweep() + branches.Sweep()
				m.RecordSessionsExpired(expired)
				m.SetActiveSessions(sessions.Len())
			case <-coord.Begun():
				return
			}
		}
	}()

	chat := conversation.NewService(conversation.Config{
		Tenants:     tenants,
		Sessions:    sessions,
		Branches:    branches,
		Clock:       clk,
		Logger:      logger,
		ForceWizard: cfg.Chat.ForceWizard,
		Seed:        time.Now().UnixNano(),
	})

	ctx := context.Background()

	// Quote archive is optional; without a database the service runs fully
	// in memory.
	var archive domain.QuoteArchive
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure database schema", zap.Error(err))
		}
		archive = repository.NewQuoteArchiveRepository(db.Pool, m.RecordDBQuery)

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					stat := db.Stats()
					m.UpdateDBConnections(int(stat.TotalConns()), int(stat.AcquiredConns()))
				case <-coord.Begun():
					return
				}
			}
		}()
	}

	var mailer *email.Client
	if cfg.Email.Enabled {
		breakerCfg := circuitbreaker.DefaultConfig()
		breakerCfg.OnStateChange = func(_, to circuitbreaker.State) {
			m.SetCircuitBreakerState("postmark", int(to))
			if to == circuitbreaker.StateOpen {
				m.RecordCircuitTrip()
			}
		}
		mailer = email.New(email.Config{
			ServerToken:    cfg.Email.PostmarkToken,
			APIURL:         cfg.Email.APIURL,
			From:           cfg.Email.From,
			BCC:            cfg.Email.BCC,
			MessageStream:  cfg.Email.MessageStream,
			Timeout:        cfg.Email.Timeout,
			CircuitBreaker: breakerCfg,
		}, logger)
		logger.Info("email estimates enabled", zap.String("from", cfg.Email.From))
	}

	admin := middleware.NewAdminAuth(cfg.Admin.KeyHash, logger, m.RecordAdminAuth)
	if !admin.Enabled() {
		logger.Warn("admin key not configured; admin endpoints disabled")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger,
		func(ip string) {
			m.RecordRateLimitHit("http")
			events.RateLimitExceeded("http", ip)
		})

	h := handler.New(handler.Config{
		Tenants:  tenants,
		Chat:     chat,
		Archive:  archive,
		Mailer:   mailer,
		DB:       dbPinger(db),
		Ready:    notDraining(coord),
		Metrics:  m,
		Events:   events,
		Admin:    admin,
		LogLevel: log,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.CookieMaxAge,
			Secure: cfg.Session.CookieSecure,
		},
		RedactLogs: cfg.IsProduction(),
		Clock:      clk,
		Logger:     logger,
	})

	r := chi.NewRouter()
	r.Use(middleware.Correlation)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(m.Middleware)
	r.Use(middleware.BodySizeLimiterJSON())
	r.Use(middleware.RateLimit(rateLimiter))

	r.Handle("/metrics", m.Handler())
	h.Routes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	coord.RegisterFunc(shutdown.PhaseDrain, "http-server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	coord.RegisterFunc(shutdown.PhaseStop, "session-sweeper", func(ctx context.Context) error {
		select {
		case <-sweeperDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if db != nil {
		coord.RegisterFunc(shutdown.PhaseRelease, "database", func(context.Context) error {
			db.Close()
			return nil
		})
	}
	coord.RegisterFunc(shutdown.PhaseRelease, "logger", func(context.Context) error {
		_ = logger.Sync()
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("received shutdown signal")
	if err := coord.Shutdown(ctx); err != nil {
		logger.Error("shutdown interrupted", zap.Error(err))
	}
}

// dbPinger adapts the optional database handle to the handler's probe
// interface without passing a typed nil.
func dbPinger(db *database.DB) handler.Pinger {
	if db == nil {
		return nil
	}
	return db
}

// notDraining reports readiness until shutdown begins.
func notDraining(coord *shutdown.Coordinator) func() bool {
	return func() bool {
		select {
		case <-coord.Begun():
			return false
		default:
			return true
		}
	}
}
