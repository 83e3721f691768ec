// Package logging provides structured logging with runtime level adjustment.
package logging

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with an atomic level so operators can change
// verbosity on a running server.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New creates a Logger writing JSON (or console) output to stderr.
func New(level, format, environment string) (*Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	atomicLevel := zap.NewAtomicLevelAt(parsed)

	var encoderConfig zapcore.EncoderConfig
	if environment == "production" {
		encoderConfig = zap.NewProductionEncoderConfig()
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	var encoder zapcore.Encoder
	if format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), atomicLevel)

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if environment == "development" {
		opts = append(opts, zap.Development())
	}

	return &Logger{
		Logger: zap.New(core, opts...),
		level:  atomicLevel,
	}, nil
}

// ParseLevel parses a level string into a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "dpanic":
		return zapcore.DPanicLevel, nil
	case "panic":
		return zapcore.PanicLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown level: %s", level)
	}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level string) error {
	previous := l.level.String()

	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}

	l.level.SetLevel(parsed)
	l.Logger.Info("log level changed",
		zap.String("new_level", level),
		zap.String("previous_level", previous),
	)
	return nil
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() string {
	return l.level.String()
}

// ServeHTTP manages the log level over HTTP. GET returns the current
// level, PUT/POST sets a new one via the "level" query or form parameter.
func (l *Logger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"level":"%s"}`, l.GetLevel())

	case http.MethodPut, http.MethodPost:
		newLevel := r.URL.Query().Get("level")
		if newLevel == "" {
			if err := r.ParseForm(); err == nil {
				newLevel = r.FormValue("level")
			}
		}
		if newLevel == "" {
			http.Error(w, `{"error":"level parameter required"}`, http.StatusBadRequest)
			return
		}

		if err := l.SetLevel(newLevel); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"level":"%s","message":"level updated"}`, l.GetLevel())

	default:
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

// Named returns a named child logger sharing the same atomic level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), level: l.level}
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), level: l.level}
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.Logger
}
