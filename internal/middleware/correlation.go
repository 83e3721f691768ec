// Package middleware provides HTTP middleware for the application.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Correlation ID headers.
const (
	// CorrelationIDHeader carries a caller-supplied ID across services.
	CorrelationIDHeader = "X-Correlation-ID"
	// RequestIDHeader is unique per request.
	RequestIDHeader = "X-Request-ID"
)

type correlationIDKey struct{}

type requestIDKey struct{}

// Correlation extracts or generates correlation and request IDs, stores them
// in the request context, and echoes them on the response.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = generateID()
		}

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = generateID()
		}

		ctx = context.WithValue(ctx, correlationIDKey{}, correlationID)
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)

		w.Header().Set(CorrelationIDHeader, correlationID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID creates a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// LoggerWithCorrelation returns a logger with correlation fields added.
func LoggerWithCorrelation(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 2)

	if id := GetCorrelationID(ctx); id != "" {
		fields = append(fields, zap.String("correlation_id", id))
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// PropagateHeaders adds correlation headers to an outgoing HTTP request.
func PropagateHeaders(ctx context.Context, req *http.Request) {
	if id := GetCorrelationID(ctx); id != "" {
		req.Header.Set(CorrelationIDHeader, id)
	}
}

// generateID generates a random hex ID.
func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}
