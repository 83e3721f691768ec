package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testKeyHash(t *testing.T, key string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword: %v", err)
	}
	return string(hash)
}

func TestAdminAuthCheck(t *testing.T) {
	auth := NewAdminAuth(testKeyHash(t, "letmein"), zap.NewNop(), nil)

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"valid key", "letmein", true},
		{"wrong key", "guess", false},
		{"missing key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/quote/acme", nil)
			if tt.key != "" {
				req.Header.Set(AdminKeyHeader, tt.key)
			}
			if got := auth.Check(req); got != tt.want {
				t.Errorf("Check() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestAdminAuthDisabled(t *testing.T) {
	auth := NewAdminAuth("", zap.NewNop(), nil)

	if auth.Enabled() {
		t.Error("Enabled() = true with empty hash")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quote/acme", nil)
	req.Header.Set(AdminKeyHeader, "anything")
	if auth.Check(req) {
		t.Error("Check() = true with admin auth disabled")
	}
}

func TestAdminAuthRequire(t *testing.T) {
	var outcomes []bool
	auth := NewAdminAuth(testKeyHash(t, "letmein"), zap.NewNop(), func(ok bool) {
		outcomes = append(outcomes, ok)
	})

	handler := auth.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/loglevel", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, expected 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/loglevel", nil)
	req.Header.Set(AdminKeyHeader, "letmein")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, expected 200", rec.Code)
	}

	if len(outcomes) != 1 || !outcomes[0] {
		t.Errorf("onCheck outcomes = %v, expected [true]", outcomes)
	}
}
