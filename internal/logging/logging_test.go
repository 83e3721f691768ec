package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"  INFO  ", zapcore.InfoLevel, false},
		{"verbose", zapcore.InfoLevel, true},
		{"", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	logger, err := New("info", "json", "development")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := logger.GetLevel(); got != "info" {
		t.Errorf("GetLevel() = %q, expected %q", got, "info")
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) error = %v", err)
	}
	if got := logger.GetLevel(); got != "debug" {
		t.Errorf("GetLevel() after SetLevel = %q, expected %q", got, "debug")
	}

	if err := logger.SetLevel("nonsense"); err == nil {
		t.Error("SetLevel(nonsense) expected error, got nil")
	}
	if got := logger.GetLevel(); got != "debug" {
		t.Errorf("level changed after invalid SetLevel: %q", got)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("loud", "json", "development"); err == nil {
		t.Error("New with invalid level expected error, got nil")
	}
}

func TestServeHTTP(t *testing.T) {
	logger, err := New("info", "json", "development")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	t.Run("get returns current level", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/loglevel", nil)
		logger.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, expected 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"level":"info"`) {
			t.Errorf("body = %q, expected level info", rec.Body.String())
		}
	})

	t.Run("put updates level", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/admin/loglevel?level=warn", nil)
		logger.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, expected 200", rec.Code)
		}
		if got := logger.GetLevel(); got != "warn" {
			t.Errorf("GetLevel() = %q, expected %q", got, "warn")
		}
	})

	t.Run("put without level is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/admin/loglevel", nil)
		logger.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", rec.Code)
		}
	})

	t.Run("put with invalid level is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/admin/loglevel?level=shouty", nil)
		logger.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", rec.Code)
		}
	})

	t.Run("delete is not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/admin/loglevel", nil)
		logger.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, expected 405", rec.Code)
		}
	})
}
