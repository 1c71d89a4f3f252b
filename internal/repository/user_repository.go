package repository

import (
	"context"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// UpsertOTP writes a fresh code onto the user row keyed by email,
	// creating the row if absent. Any previous unconsumed code for that
	// email is overwritten, so at most one code is valid at a time.
	UpsertOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// ClearOTP nulls both OTP columns (single-use enforcement).
	ClearOTP(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, email string, req *domain.CompleteProfileRequest) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `email, phone, name, company, address, dob, otp_code, otp_expires_at, created_at`

func (r *userRepository) UpsertOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	const q = `
		INSERT INTO users (email, otp_code, otp_expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			otp_code = EXCLUDED.otp_code,
			otp_expires_at = EXCLUDED.otp_expires_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email, code, expiresAt)
	return err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	var phone, name, company, address, dob *string
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&u.Email, &phone, &name, &company, &address, &dob, &u.OTPCode, &u.OTPExpiresAt, &u.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Phone = deref(phone)
	u.Name = deref(name)
	u.Company = deref(company)
	u.Address = deref(address)
	u.DOB = deref(dob)
	return &u, nil
}

func (r *userRepository) ClearOTP(ctx context.Context, email string) error {
	const q = `UPDATE users SET otp_code = NULL, otp_expires_at = NULL WHERE lower(email) = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email)
	return err
}

func (r *userRepository) UpdateProfile(ctx context.Context, email string, req *domain.CompleteProfileRequest) (*domain.User, error) {
	const q = `
		UPDATE users
		SET name = $2, company = $3, address = $4, dob = $5, created_at = now()
		WHERE lower(email) = lower($1)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	var phone, name, company, address, dob *string
	err := r.pool.QueryRow(ctx, q, email, req.Name, req.Company, req.Address, req.DOB).Scan(
		&u.Email, &phone, &name, &company, &address, &dob, &u.OTPCode, &u.OTPExpiresAt, &u.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Phone = deref(phone)
	u.Name = deref(name)
	u.Company = deref(company)
	u.Address = deref(address)
	u.DOB = deref(dob)
	return &u, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	const q = `SELECT count(*) FROM users`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
