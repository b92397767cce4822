package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/corvohq/helpdesk-ai/internal/tenant"
	"github.com/corvohq/helpdesk-ai/pkg/logging"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests from the helpdesk widget
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new chat handler
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// GetConfig handles GET /chatbot/{domainID} requests
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	cfg, err := h.svc.GetChatbotConfig(r.Context(), domainID)
	if err != nil {
		if errors.Is(err, tenant.ErrDomainNotFound) {
			http.Error(w, "unknown domain", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load chatbot config", "error", err, "domain_id", domainID)
		http.Error(w, "failed to load chatbot config", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

// MessageRequest is the POST /chatbot/{domainID}/message request body.
type MessageRequest struct {
	History []Turn `json:"history"`
	Author  string `json:"author,omitempty"`
	Message string `json:"message"`
}

// messageEnvelope is the wire shape of a processed turn: either a response
// payload or a live-room signal, never both.
type messageEnvelope struct {
	Response *Response `json:"response,omitempty"`
	Live     bool      `json:"live,omitempty"`
	ChatRoom string    `json:"chat_room,omitempty"`
}

// PostMessage handles POST /chatbot/{domainID}/message requests
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ProcessMessage(r.Context(), domainID, req.History, req.Author, req.Message)
	if err != nil {
		if errors.Is(err, tenant.ErrDomainNotFound) {
			http.Error(w, "unknown domain", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to process message", "error", err, "domain_id", domainID)
		http.Error(w, "failed to process message", http.StatusBadGateway)
		return
	}

	envelope := messageEnvelope{}
	if result.Kind == ResultLive {
		envelope.Live = true
		envelope.ChatRoom = result.ChatRoomID
	} else {
		envelope.Response = result.Response
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}

// GetHistory handles GET /chatbot/{domainID}/rooms/{roomID}/history requests
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 250 {
			limit = n
		}
	}

	msgs, err := h.svc.History(r.Context(), roomID, limit)
	if err != nil {
		h.logger.Error("failed to load history", "error", err, "chat_room_id", roomID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": msgs})
}
