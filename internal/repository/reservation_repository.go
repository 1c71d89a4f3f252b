package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	Create(ctx context.Context, email string, details domain.Details, createdAt time.Time) (*domain.Reservation, error)
	GetByID(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error)
	// LatestActive returns the visitor's most recent row of one kind with
	// check_out still null, or nil.
	LatestActive(ctx context.Context, kind domain.Kind, email string) (*domain.Reservation, error)
	// SetCheckIn stamps check_in iff it is still null. false means the
	// guard lost: the row was already checked in (or out).
	SetCheckIn(ctx context.Context, kind domain.Kind, id int64, at time.Time) (bool, error)
	// SetCheckOut stamps check_out iff check_in is set and check_out is
	// not.
	SetCheckOut(ctx context.Context, kind domain.Kind, id int64, at time.Time) (bool, error)
	ListPast(ctx context.Context, kind domain.Kind, email string) ([]domain.Reservation, error)
	ListByKind(ctx context.Context, kind domain.Kind, limit, offset int) ([]domain.Reservation, error)
	// FindByCreatedAt resolves an activity row back to its reservation via
	// the (email, created_at) join key.
	FindByCreatedAt(ctx context.Context, kind domain.Kind, email string, createdAt time.Time) (*domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

// kindCols lists the detail columns of each kind table, in scan order.
// Table and column names come from the closed Kind enum, never from
// request input.
func kindCols(kind domain.Kind) string {
	switch kind {
	case domain.KindVisit:
		return "company, friend_name, friend_email, purpose"
	case domain.KindPitch:
		return "company_name, pitch_title, pitch_description"
	case domain.KindInterview:
		return "company, position, date_time"
	case domain.KindTech:
		return "event_name, event_date_time, role_of_interest"
	}
	return ""
}

func selectCols(kind domain.Kind) string {
	return "id, user_email, " + kindCols(kind) + ", created_at, check_in, check_out"
}

func scanReservation(row pgx.Row, kind domain.Kind) (*domain.Reservation, error) {
	r := domain.Reservation{Kind: kind}
	var err error

	switch kind {
	case domain.KindVisit:
		var d domain.VisitDetails
		err = row.Scan(&r.ID, &r.UserEmail, &d.Company, &d.FriendName, &d.FriendEmail, &d.Purpose,
			&r.CreatedAt, &r.CheckIn, &r.CheckOut)
		r.Details = d
	case domain.KindPitch:
		var d domain.PitchDetails
		err = row.Scan(&r.ID, &r.UserEmail, &d.CompanyName, &d.PitchTitle, &d.PitchDescription,
			&r.CreatedAt, &r.CheckIn, &r.CheckOut)
		r.Details = d
	case domain.KindInterview:
		var d domain.InterviewDetails
		err = row.Scan(&r.ID, &r.UserEmail, &d.Company, &d.Position, &d.DateTime,
			&r.CreatedAt, &r.CheckIn, &r.CheckOut)
		r.Details = d
	case domain.KindTech:
		var d domain.TechEventDetails
		err = row.Scan(&r.ID, &r.UserEmail, &d.EventName, &d.EventDateTime, &d.RoleOfInterest,
			&r.CreatedAt, &r.CheckIn, &r.CheckOut)
		r.Details = d
	default:
		return nil, fmt.Errorf("unknown reservation kind %q", kind)
	}

	if err != nil {
		return nil, err
	}
	return &r, nil
}

func detailArgs(details domain.Details) []any {
	switch d := details.(type) {
	case domain.VisitDetails:
		return []any{d.Company, d.FriendName, d.FriendEmail, d.Purpose}
	case domain.PitchDetails:
		return []any{d.CompanyName, d.PitchTitle, d.PitchDescription}
	case domain.InterviewDetails:
		return []any{d.Company, d.Position, d.DateTime}
	case domain.TechEventDetails:
		return []any{d.EventName, d.EventDateTime, d.RoleOfInterest}
	}
	return nil
}

func (r *reservationRepository) Create(ctx context.Context, email string, details domain.Details, createdAt time.Time) (*domain.Reservation, error) {
	kind := details.Kind()
	args := detailArgs(details)

	placeholders := ""
	for i := range args {
		placeholders += fmt.Sprintf("$%d, ", i+2)
	}

	q := fmt.Sprintf(`INSERT INTO %s (user_email, %s, created_at, check_in, check_out)
		VALUES ($1, %s$%d, NULL, NULL)
		RETURNING %s`,
		kind.Table(), kindCols(kind), placeholders, len(args)+2, selectCols(kind))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx, q, append(append([]any{email}, args...), createdAt)...)
	return scanReservation(row, kind)
}

func (r *reservationRepository) GetByID(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectCols(kind), kind.Table())
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id), kind)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *reservationRepository) LatestActive(ctx context.Context, kind domain.Kind, email string) (*domain.Reservation, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s
		WHERE lower(user_email) = lower($1) AND check_out IS NULL
		ORDER BY created_at DESC
		LIMIT 1`, selectCols(kind), kind.Table())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, email), kind)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func (r *reservationRepository) SetCheckIn(ctx context.Context, kind domain.Kind, id int64, at time.Time) (bool, error) {
	q := fmt.Sprintf(`UPDATE %s SET check_in = $2 WHERE id = $1 AND check_in IS NULL`, kind.Table())
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, at)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *reservationRepository) SetCheckOut(ctx context.Context, kind domain.Kind, id int64, at time.Time) (bool, error) {
	q := fmt.Sprintf(`UPDATE %s SET check_out = $2
		WHERE id = $1 AND check_in IS NOT NULL AND check_out IS NULL`, kind.Table())
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, at)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *reservationRepository) ListPast(ctx context.Context, kind domain.Kind, email string) ([]domain.Reservation, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s
		WHERE lower(user_email) = lower($1) AND check_out IS NOT NULL
		ORDER BY created_at DESC`, selectCols(kind), kind.Table())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows, kind)
}

func (r *reservationRepository) ListByKind(ctx context.Context, kind domain.Kind, limit, offset int) ([]domain.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := fmt.Sprintf(`SELECT %s FROM %s
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, selectCols(kind), kind.Table())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows, kind)
}

func (r *reservationRepository) FindByCreatedAt(ctx context.Context, kind domain.Kind, email string, createdAt time.Time) (*domain.Reservation, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s
		WHERE lower(user_email) = lower($1) AND created_at = $2
		LIMIT 1`, selectCols(kind), kind.Table())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, email, createdAt), kind)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return res, err
}

func collectReservations(rows pgx.Rows, kind domain.Kind) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
