// Package chat exposes the question-answering HTTP surface.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"nurseaid/internal/events"
	"nurseaid/internal/history"
	"nurseaid/internal/middleware"
	"nurseaid/internal/qa"
)

type Handler struct {
	qa      *qa.Service
	history *history.Service
	emitter *events.Emitter
}

func NewHandler(qaService *qa.Service, historyService *history.Service, emitter *events.Emitter) *Handler {
	return &Handler{qa: qaService, history: historyService, emitter: emitter}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp, err := h.qa.Ask(ctx, req.Question)
	if err != nil {
		if errors.Is(err, qa.ErrEmptyQuestion) {
			h.writeError(ctx, w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(ctx, "chat request failed", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.history.Record(ctx, req.Question, resp.Answer, resp.Success)
	h.emitter.Emit(ctx, events.ChatEvent{
		Question:    req.Question,
		Answer:      resp.Answer,
		Success:     resp.Success,
		VideoPrompt: resp.VideoPrompt,
		LatencyMs:   time.Since(start).Milliseconds(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	entries, err := h.history.List(ctx, limit)
	if err != nil {
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": entries,
		"meta": map[string]int{"count": len(entries)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.history.Clear(ctx); err != nil {
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Debug reports corpus and pipeline state without triggering initialization.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	docsRoot := h.qa.DocsRoot()
	files := []string{}
	if entries, err := os.ReadDir(docsRoot); err == nil {
		for _, e := range entries {
			files = append(files, e.Name())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"docs_path":       docsRoot,
		"docs_files":      files,
		"qa_initialized":  h.qa.Initialized(),
		"chunks":          h.qa.ChunkCount(),
		"history_enabled": h.history.Enabled(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// InitQA forces pipeline initialization ahead of the first question.
func (h *Handler) InitQA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.qa.Warmup(ctx); err != nil {
		slog.ErrorContext(ctx, "manual pipeline initialization failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": "qa pipeline initialized"}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
