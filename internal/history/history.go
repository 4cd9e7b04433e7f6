// Package history persists answered questions so the web client can replay a
// conversation after reload.
package history

import (
	"context"
	"time"
)

type Entry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
