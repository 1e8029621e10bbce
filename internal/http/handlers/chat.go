package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/glowdesk/receptionist/internal/appointments"
	"github.com/glowdesk/receptionist/internal/assistant"
	"github.com/glowdesk/receptionist/internal/catalog"
	"github.com/glowdesk/receptionist/pkg/logging"
)

// ChatHandler serves the conversational endpoint. Each request carries the
// tenant's prompt material; the engine and session store are shared.
type ChatHandler struct {
	engine *assistant.Engine
	store  appointments.Store
	logger *logging.Logger
}

// NewChatHandler creates the handler. A nil store means appointments are
// carried per request in the serialized appointments field.
func NewChatHandler(engine *assistant.Engine, store appointments.Store, logger *logging.Logger) *ChatHandler {
	if engine == nil {
		panic("handlers: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{engine: engine, store: store, logger: logger}
}

// ChatRequest is the request body for POST /v1/chat.
type ChatRequest struct {
	ConversationID string               `json:"conversation_id,omitempty"`
	Message        string               `json:"message"`
	KnowledgeBase  string               `json:"knowledge_base"`
	Services       string               `json:"services"`
	Instructions   string               `json:"instructions,omitempty"`
	FAQ            string               `json:"faq,omitempty"`
	Appointments   string               `json:"appointments,omitempty"`
	ChatHistory    []assistant.Exchange `json:"chat_history,omitempty"`
}

// ChatResponse mirrors the engine's turn result.
type ChatResponse struct {
	ConversationID string                `json:"conversation_id"`
	Message        string                `json:"message"`
	Success        bool                  `json:"success"`
	IsBooking      bool                  `json:"is_booking"`
	BookingData    map[string]string     `json:"booking_data"`
	Appointments   []appointments.Record `json:"appointments"`
	ChatHistory    []assistant.Exchange  `json:"chat_history"`
}

// Handle processes one conversation turn.
// POST /v1/chat
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cat, err := catalog.Parse(req.Services)
	if err != nil {
		jsonError(w, "services must be a non-empty newline-delimited list", http.StatusBadRequest)
		return
	}

	store := h.store
	if store == nil {
		seed, err := appointments.ParseSerialized(req.Appointments)
		if err != nil {
			jsonError(w, "appointments is not valid JSON", http.StatusBadRequest)
			return
		}
		store = appointments.NewMemoryStoreSeeded(seed)
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	result, err := h.engine.ProcessTurn(r.Context(), assistant.TurnRequest{
		ConversationID: conversationID,
		Message:        req.Message,
		Knowledge: assistant.KnowledgeConfig{
			KnowledgeBase: req.KnowledgeBase,
			FAQ:           req.FAQ,
			Instructions:  req.Instructions,
		},
		Catalog: cat,
		Store:   store,
		History: req.ChatHistory,
	})
	if err != nil {
		h.logger.Error("turn processing failed", "conversation_id", conversationID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		ConversationID: conversationID,
		Message:        result.Message,
		Success:        result.Success,
		IsBooking:      result.BookingInProgress,
		BookingData:    result.BookingFields,
		Appointments:   result.Appointments,
		ChatHistory:    result.History,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]any{"error": message})
}
