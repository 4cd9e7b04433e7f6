// Package quiz serves corpus-driven practice questions.
package quiz

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"nurseaid/internal/middleware"
	"nurseaid/internal/qa"
)

type Handler struct {
	qa *qa.Service
}

func NewHandler(qaService *qa.Service) *Handler {
	return &Handler{qa: qaService}
}

// Get returns one freshly generated multiple-choice question.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.qa.Quiz(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "quiz generation failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(q); err != nil {
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
