// Package metrics provides metrics collection including business event logging.
package metrics

import (
	"time"

	"go.uber.org/zap"
)

// EventLogger provides structured logging for business events. It complements
// Prometheus counters with searchable per-event logs.
type EventLogger struct {
	logger *zap.Logger
}

// NewEventLogger creates a new business event logger.
func NewEventLogger(logger *zap.Logger) *EventLogger {
	return &EventLogger{
		logger: logger.Named("events"),
	}
}

// TurnHandled logs a handled conversation turn.
func (l *EventLogger) TurnHandled(tenant, sid, kind, step string) {
	l.logger.Info("conversation_turn",
		zap.String("event_type", "conversation.turn"),
		zap.String("tenant", tenant),
		zap.String("sid", maskIdentifier(sid)),
		zap.String("kind", kind),
		zap.String("step", step),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// QuoteComputed logs a computed quote with its headline numbers.
func (l *EventLogger) QuoteComputed(tenant, channel string, quantity int, grandTotal string) {
	l.logger.Info("quote_computed",
		zap.String("event_type", "quote.computed"),
		zap.String("tenant", tenant),
		zap.String("channel", channel),
		zap.Int("quantity", quantity),
		zap.String("grand_total", grandTotal),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// QuoteRejected logs a quote computation that failed validation or pricing.
func (l *EventLogger) QuoteRejected(tenant, channel, code, message string) {
	l.logger.Warn("quote_rejected",
		zap.String("event_type", "quote.rejected"),
		zap.String("tenant", tenant),
		zap.String("channel", channel),
		zap.String("code", code),
		zap.String("message", message),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// EstimateEmailed logs an estimate email send.
func (l *EventLogger) EstimateEmailed(tenant, toEmail string, success bool, duration time.Duration) {
	fields := []zap.Field{
		zap.String("event_type", "estimate.emailed"),
		zap.String("tenant", tenant),
		zap.String("to", maskEmail(toEmail)),
		zap.Bool("success", success),
		zap.Duration("duration", duration),
		zap.Time("timestamp", time.Now().UTC()),
	}
	if success {
		l.logger.Info("estimate_emailed", fields...)
	} else {
		l.logger.Warn("estimate_email_failed", fields...)
	}
}

// PDFRendered logs a PDF quote render.
func (l *EventLogger) PDFRendered(tenant string, quantity int, bytes int) {
	l.logger.Info("pdf_rendered",
		zap.String("event_type", "pdf.rendered"),
		zap.String("tenant", tenant),
		zap.Int("quantity", quantity),
		zap.Int("bytes", bytes),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// RateLimitExceeded logs a rate limit rejection.
func (l *EventLogger) RateLimitExceeded(limiter, identifier string) {
	l.logger.Warn("rate_limit_exceeded",
		zap.String("event_type", "rate_limit.exceeded"),
		zap.String("limiter", limiter),
		zap.String("identifier", maskIdentifier(identifier)),
		zap.Time("timestamp", time.Now().UTC()),
	)
}

// Helper functions for data masking

// maskEmail masks an email for privacy.
func maskEmail(email string) string {
	if len(email) == 0 {
		return ""
	}
	at := -1
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at <= 0 {
		return "****"
	}
	if at <= 2 {
		return email[0:1] + "***" + email[at:]
	}
	return email[0:2] + "***" + email[at:]
}

// maskIdentifier masks an identifier for privacy.
func maskIdentifier(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return id[:2] + "****" + id[len(id)-2:]
}
