package repository

import (
	"context"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackRepository interface {
	Create(ctx context.Context, req *domain.FeedbackRequest) (*domain.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, req *domain.FeedbackRequest) (*domain.Feedback, error) {
	const q = `
		INSERT INTO feedback (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, message, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var f domain.Feedback
	err := r.pool.QueryRow(ctx, q, req.Name, req.Email, req.Message).Scan(
		&f.ID, &f.Name, &f.Email, &f.Message, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepository) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, name, email, message, created_at
		FROM feedback
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
