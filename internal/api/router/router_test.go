package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corvohq/helpdesk-ai/internal/chat"
	"github.com/corvohq/helpdesk-ai/internal/customer"
	"github.com/corvohq/helpdesk-ai/internal/tenant"
)

type staticLLM struct{ reply string }

func (s staticLLM) Complete(ctx context.Context, req chat.LLMRequest) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	domains := tenant.NewInMemoryRepository()
	domains.Put(&tenant.Domain{
		ID:              "dom-1",
		OwnerID:         "owner-1",
		Name:            "Acme",
		HelpdeskEnabled: true,
		WidgetTheme:     "light",
	})

	svc := chat.NewService(chat.ServiceConfig{
		Domains:    domains,
		Customers:  customer.NewInMemoryRepository(),
		Transcript: chat.NewInMemoryTranscriptStore(),
		LLM:        staticLLM{reply: "How can I help?"},
		Prompts:    chat.NewPromptBuilder("https://app.corvohq.com"),
	})

	return New(&Config{
		ChatHandler:        chat.NewHandler(svc, nil),
		CORSAllowedOrigins: []string{"*"},
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestChatbotConfigRoute(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chatbot/dom-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"domain_name":"Acme"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestChatbotConfigRoute_UnknownDomain(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chatbot/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMessageRoute(t *testing.T) {
	r := newTestRouter(t)

	body := strings.NewReader(`{"history":[],"message":"hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/chatbot/dom-1/message", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "How can I help?") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
