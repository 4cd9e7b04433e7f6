package history

import (
	"context"
	"log/slog"
)

const defaultListLimit = 50

// Service wraps the repository with a nil-safe surface: a deployment without
// a database gets a no-op history, not a crash.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores an answered question. Failures are logged, not returned: a
// broken history store must never fail the chat request itself.
func (s *Service) Record(ctx context.Context, question, answer string, success bool) {
	if !s.Enabled() {
		return
	}
	entry := &Entry{Question: question, Answer: answer, Success: success}
	if err := s.repo.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to record chat history", "error", err)
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	if !s.Enabled() {
		return []Entry{}, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *Service) Clear(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.Clear(ctx)
}
