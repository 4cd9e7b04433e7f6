// Package logger decorates slog handlers with request-scoped attributes.
package logger

import (
	"context"
	"log/slog"

	"nurseaid/internal/middleware"
)

// ContextHandler stamps the correlation id from the request context onto
// every record, so per-request logs can be tied together.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
