package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jkindrix/shopquote/internal/clock"
	"github.com/jkindrix/shopquote/internal/conversation"
	"github.com/jkindrix/shopquote/internal/domain"
	"github.com/jkindrix/shopquote/internal/logging"
	"github.com/jkindrix/shopquote/internal/middleware"
	"github.com/jkindrix/shopquote/internal/session"
	"github.com/jkindrix/shopquote/internal/tenant"
)

const testAdminKey = "test-admin-key"

// memArchive collects quote records in memory.
type memArchive struct {
	mu      sync.Mutex
	records []*domain.QuoteRecord
}

func (a *memArchive) Create(_ context.Context, rec *domain.QuoteRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *memArchive) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*domain.QuoteRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var matched []*domain.QuoteRecord
	for _, rec := range a.records {
		if rec.Tenant == tenantID {
			matched = append(matched, rec)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (a *memArchive) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

type testEnv struct {
	handler  *Handler
	router   http.Handler
	archive  *memArchive
	clk      *clock.Mock
	sessions *session.Store[*domain.QuoteSession]
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tenants := tenant.NewStore("testdata", nil)
	sessions := session.NewStore[*domain.QuoteSession](time.Hour, mock, nil)
	chat := conversation.NewService(conversation.Config{
		Tenants:  tenants,
		Sessions: sessions,
		Branches: session.NewStore[*domain.PendingBranch](time.Hour, mock, nil),
		Clock:    mock,
		Seed:     1,
	})

	keyHash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	archive := &memArchive{}
	cfg := Config{
		Tenants: tenants,
		Chat:    chat,
		Archive: archive,
		Admin:   middleware.NewAdminAuth(string(keyHash), zap.NewNop(), nil),
		Cookie:  CookieConfig{Name: "sid", MaxAge: 30 * 24 * time.Hour, Secure: true},
		Clock:   mock,
		Logger:  zap.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	h := New(cfg)
	r := chi.NewRouter()
	h.Routes(r)
	return &testEnv{handler: h, router: r, archive: archive, clk: mock, sessions: sessions}
}

func (e *testEnv) post(t *testing.T, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	detail, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error detail in %q", w.Body.String())
	}
	code, _ := detail["code"].(string)
	return code
}

func TestHandleAsk(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.post(t, "/api/ask/acme", map[string]string{"message": "hello"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["reply"] == "" {
		t.Error("empty reply")
	}
	if body["type"] != "branch" {
		t.Errorf("type = %v, want branch greeting", body["type"])
	}

	cookies := w.Result().Cookies()
	var sid *http.Cookie
	for _, c := range cookies {
		if c.Name == "sid" {
			sid = c
		}
	}
	if sid == nil {
		t.Fatal("no sid cookie set")
	}
	if !sid.Secure || sid.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = secure %v samesite %v", sid.Secure, sid.SameSite)
	}
	if sid.MaxAge != int((30 * 24 * time.Hour).Seconds()) {
		t.Errorf("cookie max age = %d", sid.MaxAge)
	}
}

func TestHandleAskKeepsSession(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.post(t, "/api/ask/acme", map[string]string{"message": "quote"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/ask/acme", strings.NewReader(`{"message":"48"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	w2 := httptest.NewRecorder()
	env.router.ServeHTTP(w2, req)

	body := decodeBody(t, w2)
	state, ok := body["state"].(map[string]any)
	if !ok || state["step"] != "ask_loc" {
		t.Fatalf("second turn state = %v, want ask_loc", body["state"])
	}
}

func TestHandleAskErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing message", "/api/ask/acme", map[string]string{}, http.StatusBadRequest, "MISSING_FIELD"},
		{"blank message", "/api/ask/acme", map[string]string{"message": "   "}, http.StatusBadRequest, "MISSING_FIELD"},
		{"unknown tenant", "/api/ask/ghost", map[string]string{"message": "hi"}, http.StatusNotFound, "TENANT_NOT_FOUND"},
		{"invalid tenant id", "/api/ask/..", map[string]string{"message": "hi"}, http.StatusNotFound, "TENANT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.post(t, tt.path, tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if code := errorCode(t, w); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestHandleAskMalformedJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ask/acme", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleLegacyQuote(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.post(t, "/quote", map[string]string{"tenant": "acme", "message": "hello"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// The "client" alias works too.
	w = env.post(t, "/quote", map[string]string{"client": "acme", "message": "hello"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("client alias status = %d", w.Code)
	}

	// No tenant falls back to the legacy default, which is unknown here.
	w = env.post(t, "/quote", map[string]string{"message": "hello"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("default tenant status = %d, want 404", w.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.get(t, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("/health = %d", w.Code)
	}
	if w := env.get(t, "/ready", nil); w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Errorf("/ready = %d %q", w.Code, w.Body.String())
	}
	if w := env.get(t, "/ping", nil); w.Body.String() != "pong" {
		t.Errorf("/ping body = %q", w.Body.String())
	}
	if w := env.get(t, "/api/ping", nil); decodeBody(t, w)["pong"] != true {
		t.Errorf("/api/ping body = %s", w.Body.String())
	}
	if w := env.get(t, "/__version", nil); decodeBody(t, w)["ok"] != true {
		t.Errorf("/__version body = %s", w.Body.String())
	}
}

func TestReadinessDuringDrain(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Ready = func() bool { return false }
	})
	if w := env.get(t, "/ready", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready while draining = %d, want 503", w.Code)
	}
}

func TestAdminLogLevelRoute(t *testing.T) {
	logCtl, err := logging.New("info", "json", "production")
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	env := newTestEnv(t, func(cfg *Config) {
		cfg.LogLevel = logCtl
	})

	if w := env.get(t, "/admin/loglevel", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", w.Code)
	}

	w := env.get(t, "/admin/loglevel", map[string]string{"X-Admin-Key": testAdminKey})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["level"] != "info" {
		t.Errorf("level = %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPut, "/admin/loglevel?level=debug", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w2 := httptest.NewRecorder()
	env.router.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", w2.Code, w2.Body.String())
	}
	if logCtl.GetLevel() != "debug" {
		t.Errorf("level after put = %s", logCtl.GetLevel())
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return context.DeadlineExceeded }

func TestHealthWithFailingDatabase(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.DB = failingPinger{}
	})

	w := env.get(t, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("/health = %d, want 503", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "unhealthy" {
		t.Errorf("status = %v", body["status"])
	}
	if w := env.get(t, "/ready", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready = %d, want 503", w.Code)
	}
}
