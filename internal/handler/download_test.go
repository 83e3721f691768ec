package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestDownloadQuote(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]any{
		"quantity":  72,
		"locations": []map[string]any{{"location": "front", "colors": 2}},
		"tier":      "better",
	}
	w := env.post(t, "/api/download_quote/acme", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "acme_quote_72.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Errorf("body does not start with PDF magic: %q", w.Body.String()[:8])
	}
}

func TestDownloadQuoteUpsellOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]any{
		"upsell": map[string]any{"key": "foil", "width_in": 10, "height_in": 10, "qty": 5},
	}
	w := env.post(t, "/api/download_quote/acme", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "acme_quote_5.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestDownloadQuoteErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	// Neither placements nor upsell.
	w := env.post(t, "/api/download_quote/acme", map[string]any{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty payload status = %d", w.Code)
	}

	// Below the order minimum.
	w = env.post(t, "/api/download_quote/acme", map[string]any{
		"quantity":  5,
		"locations": []map[string]any{{"location": "front", "colors": 1}},
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("small order status = %d, body %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "SMALL_ORDER" {
		t.Errorf("code = %s, want SMALL_ORDER", code)
	}

	// Unknown tenant.
	w = env.post(t, "/api/download_quote/ghost", map[string]any{
		"quantity":  48,
		"locations": []map[string]any{{"location": "front", "colors": 1}},
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown tenant status = %d", w.Code)
	}
}
