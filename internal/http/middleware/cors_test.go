package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowlist(t *testing.T) {
	h := CORS([]string{"https://widget.test"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/chatbot/d1", nil)
	req.Header.Set("Origin", "https://widget.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://widget.test" {
		t.Errorf("expected origin echoed, got %q", got)
	}
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	h := CORS([]string{"https://widget.test"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/chatbot/d1", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for unknown origin, got %q", got)
	}
}

func TestCORSWildcard(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/chatbot/d1", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.test" {
		t.Errorf("expected wildcard echo, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/chatbot/d1/message", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", rec.Code)
	}
}
