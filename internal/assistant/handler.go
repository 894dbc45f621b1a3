package assistant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/intellistudy/internal/chat"
)

// maxRequestBodySize caps a chat request body (1MB).
const maxRequestBodySize = 1 << 20

// wordsPerChunk is how many words each streamed chunk record carries.
const wordsPerChunk = 3

// Handler serves the chat endpoint.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a Handler. svc may be nil, in which case every chat
// request is answered with 503.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Post(chat.ChatPath, h.HandleChat)
}

// NewRouter builds the assistant's HTTP router with the standard middleware
// stack and a /health heartbeat.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	h.RegisterRoutes(r)
	return r
}

// HandleChat answers one chat request, streamed or as a single JSON body.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" {
		h.writeDetail(w, http.StatusBadRequest, "user_query is required")
		return
	}
	if req.SessionID == "" {
		h.writeDetail(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if !h.svc.Available() {
		h.logger.Error("chat request without a configured LLM provider")
		h.writeDetail(w, http.StatusServiceUnavailable,
			"No LLM provider is configured. Set an API key (for example OPENROUTER_API_KEY) and restart the server.")
		return
	}

	h.logger.Info("chat request",
		"session_id", req.SessionID,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"query_length", len(req.UserQuery),
		"has_materials", req.StudyMaterialsContext != "",
		"has_plan", req.StudyPlanContext != "",
		"stream", req.Stream,
	)

	if req.Stream {
		h.stream(w, r, req)
		return
	}

	answer, err := h.svc.Reply(r.Context(), req)
	if err != nil {
		h.logger.Error("chat reply failed", "session_id", req.SessionID, "error", err)
		h.writeDetail(w, http.StatusInternalServerError, "Error processing chat request with AI: "+err.Error())
		return
	}

	debug, _ := json.Marshal(map[string]any{"model": h.svc.provider.ModelID()})
	h.writeJSON(w, http.StatusOK, chat.JSONResponse{
		AIResponse: answer,
		SessionID:  req.SessionID,
		DebugInfo:  debug,
	})
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, req chat.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeDetail(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(ev chat.Event) bool {
		if err := chat.EncodeEvent(w, ev); err != nil {
			h.logger.Warn("write stream event", "session_id", req.SessionID, "error", err)
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(chat.Event{Kind: chat.EventProcessing}) {
		return
	}

	answer, err := h.svc.Reply(r.Context(), req)
	if err != nil {
		h.logger.Error("chat reply failed", "session_id", req.SessionID, "error", err)
		send(chat.Event{Kind: chat.EventError, Text: "Error processing chat request with AI: " + err.Error()})
		return
	}

	for _, c := range chunkWords(answer, wordsPerChunk) {
		if r.Context().Err() != nil {
			return
		}
		if !send(chat.Event{Kind: chat.EventChunk, Text: c}) {
			return
		}
	}
	send(chat.Event{Kind: chat.EventDone})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", "status", status, "error", err)
	}
}

func (h *Handler) writeDetail(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}
