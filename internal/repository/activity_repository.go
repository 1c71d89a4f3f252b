package repository

import (
	"context"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository interface {
	// Append adds one feed row. The table is append-only: rows are never
	// updated or deleted, and "current status" reads take the newest row
	// per email by insertion order.
	Append(ctx context.Context, a *domain.Activity) error
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

const activityCols = `id, email, name, purpose, status, created_at, check_in, check_out`

func (r *activityRepository) Append(ctx context.Context, a *domain.Activity) error {
	const q = `
		INSERT INTO recent (email, name, purpose, status, created_at, check_in, check_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.pool.QueryRow(ctx, q,
		a.Email, a.Name, string(a.Purpose), string(a.Status), a.CreatedAt, a.CheckIn, a.CheckOut,
	).Scan(&a.ID)
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const q = `SELECT ` + activityCols + ` FROM recent ORDER BY id DESC LIMIT $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(
			&a.ID, &a.Email, &a.Name, &a.Purpose, &a.Status, &a.CreatedAt, &a.CheckIn, &a.CheckOut,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
