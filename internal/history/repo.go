package history

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO chat_history (question, answer, success) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, entry.Question, entry.Answer, entry.Success).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, question, answer, success, created_at FROM chat_history ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Success, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Clear(ctx context.Context) error {
	query := `DELETE FROM chat_history`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chat_history`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
