package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/pkg/events"
	"github.com/frontdesk/visitorapp/pkg/logger"
)

type ReservationService interface {
	Create(ctx context.Context, email string, details domain.Details) (*domain.Reservation, error)
	CheckIn(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error)
	CheckOut(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error)
	Current(ctx context.Context, email string) (*domain.Reservation, error)
	ListPast(ctx context.Context, email string) ([]domain.Reservation, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	activityRepo    repository.ActivityRepository
	userRepo        repository.UserRepository
	eventBus        events.Publisher
	now             func() time.Time
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	eventBus events.Publisher,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		activityRepo:    activityRepo,
		userRepo:        userRepo,
		eventBus:        eventBus,
		now:             time.Now,
	}
}

// Create inserts a Pending reservation and mirrors it into the activity
// feed. The two inserts are not a transaction: if the feed append fails
// the reservation still exists and stays resumable, matching the
// persistence contract the dashboards were written against.
func (s *reservationService) Create(ctx context.Context, email string, details domain.Details) (*domain.Reservation, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}

	name, err := s.visitorName(ctx, email)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	reservation, err := s.reservationRepo.Create(ctx, email, details, createdAt)
	if err != nil {
		return nil, domain.UpstreamError("create reservation", err)
	}

	s.appendActivity(ctx, &domain.Activity{
		Email:     email,
		Name:      name,
		Purpose:   details.Kind(),
		Status:    domain.StatusPending,
		CreatedAt: reservation.CreatedAt,
	})

	s.publishTransition(ctx, events.ReservationCreated, reservation, name)

	return reservation, nil
}

// CheckIn moves a Pending reservation to Checked In. The write itself is
// the guard: a conditional update on check_in IS NULL, so of two
// concurrent attempts exactly one stamps the row and the other gets
// ErrInvalidTransition with nothing written.
func (s *reservationService) CheckIn(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, domain.UpstreamError("get reservation", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("%w: %s reservation %d", domain.ErrNotFound, kind, id)
	}

	if reservation.Status() != domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot check in a %s reservation", domain.ErrInvalidTransition, reservation.Status())
	}

	name, err := s.visitorName(ctx, reservation.UserEmail)
	if err != nil {
		return nil, err
	}

	checkIn := s.now()
	ok, err := s.reservationRepo.SetCheckIn(ctx, kind, id, checkIn)
	if err != nil {
		return nil, domain.UpstreamError("check in", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: reservation already checked in", domain.ErrInvalidTransition)
	}

	reservation.CheckIn = &checkIn

	// The feed row carries the reservation's original created_at, not the
	// check-in time: it is the join key back to the detail row.
	s.appendActivity(ctx, &domain.Activity{
		Email:     reservation.UserEmail,
		Name:      name,
		Purpose:   kind,
		Status:    domain.StatusCheckedIn,
		CreatedAt: reservation.CreatedAt,
		CheckIn:   &checkIn,
	})

	s.publishTransition(ctx, events.ReservationCheckedIn, reservation, name)

	return reservation, nil
}

// CheckOut moves a Checked In reservation to its terminal state.
func (s *reservationService) CheckOut(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, domain.UpstreamError("get reservation", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("%w: %s reservation %d", domain.ErrNotFound, kind, id)
	}

	if reservation.Status() != domain.StatusCheckedIn {
		return nil, fmt.Errorf("%w: cannot check out a %s reservation", domain.ErrInvalidTransition, reservation.Status())
	}

	name, err := s.visitorName(ctx, reservation.UserEmail)
	if err != nil {
		return nil, err
	}

	checkOut := s.now()
	ok, err := s.reservationRepo.SetCheckOut(ctx, kind, id, checkOut)
	if err != nil {
		return nil, domain.UpstreamError("check out", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: reservation not checked in or already checked out", domain.ErrInvalidTransition)
	}

	reservation.CheckOut = &checkOut

	s.appendActivity(ctx, &domain.Activity{
		Email:     reservation.UserEmail,
		Name:      name,
		Purpose:   kind,
		Status:    domain.StatusCheckedOut,
		CreatedAt: reservation.CreatedAt,
		CheckIn:   reservation.CheckIn,
		CheckOut:  &checkOut,
	})

	s.publishTransition(ctx, events.ReservationCheckedOut, reservation, name)

	return reservation, nil
}

// Current resolves the visitor's single active reservation. Kinds are
// scanned in fixed priority order so the answer is deterministic even if
// (abnormally) more than one kind has an active row.
func (s *reservationService) Current(ctx context.Context, email string) (*domain.Reservation, error) {
	for _, kind := range domain.KindPriority {
		reservation, err := s.reservationRepo.LatestActive(ctx, kind, email)
		if err != nil {
			return nil, domain.UpstreamError("find active reservation", err)
		}
		if reservation != nil {
			return reservation, nil
		}
	}
	return nil, nil
}

// ListPast merges the visitor's completed reservations from all four
// kind tables, newest first. Read-only; every call re-queries.
func (s *reservationService) ListPast(ctx context.Context, email string) ([]domain.Reservation, error) {
	var all []domain.Reservation
	for _, kind := range domain.KindPriority {
		past, err := s.reservationRepo.ListPast(ctx, kind, email)
		if err != nil {
			return nil, domain.UpstreamError("list past reservations", err)
		}
		all = append(all, past...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return all, nil
}

func (s *reservationService) visitorName(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.UpstreamError("find user", err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	return user.Name, nil
}

func (s *reservationService) appendActivity(ctx context.Context, a *domain.Activity) {
	if err := s.activityRepo.Append(ctx, a); err != nil {
		logger.ErrorContext(ctx, "Failed to append activity record",
			"error", err, "email", a.Email, "purpose", a.Purpose, "status", a.Status)
	}
}

func (s *reservationService) publishTransition(ctx context.Context, subject string, r *domain.Reservation, name string) {
	event := events.ReservationEvent{
		Kind:      string(r.Kind),
		Email:     r.UserEmail,
		Name:      name,
		Status:    string(r.Status()),
		CreatedAt: r.CreatedAt,
		CheckIn:   r.CheckIn,
		CheckOut:  r.CheckOut,
	}

	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation event",
			"error", err, "subject", subject, "email", r.UserEmail)
	}
}
