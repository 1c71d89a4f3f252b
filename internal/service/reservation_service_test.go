package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
)

func newTestReservationService(t *testing.T) (*reservationService, *fakeReservationRepo, *fakeActivityRepo, *time.Time) {
	t.Helper()
	users := newFakeUserRepo()
	users.users["v@example.com"] = &domain.User{
		Email: "v@example.com", Name: "Visitor", Company: "Acme", Address: "1 Main St", DOB: "1990-01-01",
	}
	reservations := newFakeReservationRepo()
	activity := newFakeActivityRepo()
	current := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	svc := NewReservationService(reservations, activity, users, &fakePublisher{}).(*reservationService)
	svc.now = func() time.Time { return current }
	return svc, reservations, activity, &current
}

func visitDetails() domain.VisitDetails {
	return domain.VisitDetails{Company: "Acme", FriendName: "Jo", FriendEmail: "jo@acme.test", Purpose: "lunch"}
}

func TestCreateReservation(t *testing.T) {
	svc, _, activity, _ := newTestReservationService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status() != domain.StatusPending {
		t.Errorf("new reservation status %q, want Pending", r.Status())
	}
	if r.Kind != domain.KindVisit {
		t.Errorf("kind %q", r.Kind)
	}

	if len(activity.rows) != 1 {
		t.Fatalf("feed rows = %d, want 1", len(activity.rows))
	}
	row := activity.rows[0]
	if row.Status != domain.StatusPending || row.Purpose != domain.KindVisit {
		t.Errorf("feed row %q/%q", row.Status, row.Purpose)
	}
	if !row.CreatedAt.Equal(r.CreatedAt) {
		t.Error("feed row created_at differs from reservation created_at")
	}
	if row.Name != "Visitor" {
		t.Errorf("feed row name %q", row.Name)
	}
}

func TestCreateReservationUnknownVisitor(t *testing.T) {
	svc, _, _, _ := newTestReservationService(t)

	_, err := svc.Create(context.Background(), "nobody@example.com", visitDetails())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateReservationInvalidDetails(t *testing.T) {
	svc, _, activity, _ := newTestReservationService(t)

	_, err := svc.Create(context.Background(), "v@example.com", domain.VisitDetails{Company: "Acme"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if len(activity.rows) != 0 {
		t.Error("rejected reservation reached the feed")
	}
}

// Full lifecycle: create, check in, check out, with the activity feed
// gaining one row per transition, all sharing the original created_at.
func TestReservationLifecycle(t *testing.T) {
	svc, _, activity, clock := newTestReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	*clock = clock.Add(10 * time.Minute)
	checkedIn, err := svc.CheckIn(ctx, domain.KindVisit, created.ID)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if checkedIn.Status() != domain.StatusCheckedIn {
		t.Errorf("status after check-in %q", checkedIn.Status())
	}

	*clock = clock.Add(2 * time.Hour)
	checkedOut, err := svc.CheckOut(ctx, domain.KindVisit, created.ID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if checkedOut.Status() != domain.StatusCheckedOut {
		t.Errorf("status after check-out %q", checkedOut.Status())
	}
	if !checkedOut.CheckOut.After(*checkedOut.CheckIn) {
		t.Error("check_out not after check_in")
	}

	if len(activity.rows) != 3 {
		t.Fatalf("feed rows = %d, want 3", len(activity.rows))
	}
	wantStatuses := []domain.Status{domain.StatusPending, domain.StatusCheckedIn, domain.StatusCheckedOut}
	for i, row := range activity.rows {
		if row.Status != wantStatuses[i] {
			t.Errorf("feed row %d status %q, want %q", i, row.Status, wantStatuses[i])
		}
		if !row.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("feed row %d lost the created_at join key", i)
		}
	}
	last := activity.rows[2]
	if last.CheckIn == nil || last.CheckOut == nil {
		t.Error("check-out feed row missing timestamps")
	}
}

func TestCheckInGuards(t *testing.T) {
	svc, reservations, _, _ := newTestReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.CheckIn(ctx, domain.KindVisit, created.ID); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	if _, err := svc.CheckIn(ctx, domain.KindVisit, created.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second CheckIn: got %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.CheckIn(ctx, domain.KindVisit, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}

	// Lost race: the status read saw Pending but another check-in lands
	// before the conditional write. The write is the guard, so the loser
	// gets ErrInvalidTransition and stamps nothing.
	late, err := svc.Create(ctx, "v@example.com", domain.PitchDetails{CompanyName: "Acme", PitchTitle: "W", PitchDescription: "D"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	now := time.Now()
	reservations.rows[domain.KindPitch][late.ID].CheckIn = &now

	svcStale := NewReservationService(&staleReadRepo{reservations}, newFakeActivityRepo(), &fakeUserRepo{users: map[string]*domain.User{
		"v@example.com": {Email: "v@example.com", Name: "Visitor"},
	}}, &fakePublisher{}).(*reservationService)
	if _, err := svcStale.CheckIn(ctx, domain.KindPitch, late.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("raced CheckIn: got %v, want ErrInvalidTransition", err)
	}
}

// staleReadRepo reports every row as Pending on read, exposing the
// conditional-write path to a read that lost the race.
type staleReadRepo struct {
	*fakeReservationRepo
}

func (s *staleReadRepo) GetByID(ctx context.Context, kind domain.Kind, id int64) (*domain.Reservation, error) {
	r, err := s.fakeReservationRepo.GetByID(ctx, kind, id)
	if r != nil {
		r.CheckIn = nil
		r.CheckOut = nil
	}
	return r, err
}

func TestCheckOutGuards(t *testing.T) {
	svc, _, _, _ := newTestReservationService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Pending rows cannot check out; check_out is never set before check_in.
	if _, err := svc.CheckOut(ctx, domain.KindVisit, created.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("check out pending: got %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.CheckIn(ctx, domain.KindVisit, created.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := svc.CheckOut(ctx, domain.KindVisit, created.ID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if _, err := svc.CheckOut(ctx, domain.KindVisit, created.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second check-out: got %v, want ErrInvalidTransition", err)
	}
}

func TestCurrentReservation(t *testing.T) {
	svc, _, _, clock := newTestReservationService(t)
	ctx := context.Background()

	r, err := svc.Current(ctx, "v@example.com")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if r != nil {
		t.Fatalf("expected no active reservation, got %v", r)
	}

	tech, err := svc.Create(ctx, "v@example.com", domain.TechEventDetails{
		EventName: "GopherCon", EventDateTime: clock.Add(24 * time.Hour), RoleOfInterest: "Backend",
	})
	if err != nil {
		t.Fatalf("Create tech: %v", err)
	}

	r, err = svc.Current(ctx, "v@example.com")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if r == nil || r.ID != tech.ID || r.Kind != domain.KindTech {
		t.Fatalf("Current = %v, want tech reservation", r)
	}

	// With rows active in two kinds, the fixed priority order picks visit
	// over tech.
	*clock = clock.Add(time.Minute)
	visit, err := svc.Create(ctx, "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create visit: %v", err)
	}

	r, err = svc.Current(ctx, "v@example.com")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if r == nil || r.Kind != domain.KindVisit || r.ID != visit.ID {
		t.Fatalf("Current = %v, want the visit reservation", r)
	}
}

func TestListPastMergesKinds(t *testing.T) {
	svc, _, _, clock := newTestReservationService(t)
	ctx := context.Background()

	complete := func(details domain.Details) {
		t.Helper()
		r, err := svc.Create(ctx, "v@example.com", details)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := svc.CheckIn(ctx, details.Kind(), r.ID); err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
		if _, err := svc.CheckOut(ctx, details.Kind(), r.ID); err != nil {
			t.Fatalf("CheckOut: %v", err)
		}
		*clock = clock.Add(time.Hour)
	}

	complete(visitDetails())
	complete(domain.PitchDetails{CompanyName: "Acme", PitchTitle: "W", PitchDescription: "D"})
	complete(domain.TechEventDetails{EventName: "GopherCon", EventDateTime: clock.Add(24 * time.Hour), RoleOfInterest: "Backend"})

	// One still-active row must not appear in the past list.
	if _, err := svc.Create(ctx, "v@example.com", domain.InterviewDetails{Company: "Acme", Position: "Eng", DateTime: clock.Add(time.Hour)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	past, err := svc.ListPast(ctx, "v@example.com")
	if err != nil {
		t.Fatalf("ListPast: %v", err)
	}
	if len(past) != 3 {
		t.Fatalf("past = %d rows, want 3", len(past))
	}
	wantOrder := []domain.Kind{domain.KindTech, domain.KindPitch, domain.KindVisit}
	for i, r := range past {
		if r.Kind != wantOrder[i] {
			t.Errorf("past[%d].Kind = %q, want %q", i, r.Kind, wantOrder[i])
		}
		if r.Status() != domain.StatusCheckedOut {
			t.Errorf("past[%d] status %q", i, r.Status())
		}
	}
}

// A feed append failure is logged, not fatal: the reservation persists
// and stays actionable.
func TestFeedFailureDoesNotBlockReservation(t *testing.T) {
	svc, _, activity, _ := newTestReservationService(t)
	activity.appendErr = errors.New("feed down")

	r, err := svc.Create(context.Background(), "v@example.com", visitDetails())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Status() != domain.StatusPending {
		t.Errorf("status %q", r.Status())
	}

	current, err := svc.Current(context.Background(), "v@example.com")
	if err != nil || current == nil {
		t.Fatalf("Current = %v, %v", current, err)
	}
}
