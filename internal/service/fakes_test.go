package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/pkg/config"
)

// In-memory fakes shared by the service tests. Each mirrors the
// persistence contract of its real counterpart, including the
// conditional-write guards.

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			SessionTTL:      10 * time.Minute,
			AdminSessionTTL: 10 * time.Minute,
			OTPTTL:          5 * time.Minute,
		},
	}
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) UpsertOTP(_ context.Context, email, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		u = &domain.User{Email: email}
		f.users[email] = u
	}
	c := code
	e := expiresAt
	u.OTPCode = &c
	u.OTPExpiresAt = &e
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ClearOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.OTPCode = nil
		u.OTPExpiresAt = nil
	}
	return nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, email string, req *domain.CompleteProfileRequest) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	u.Name = req.Name
	u.Company = req.Company
	u.Address = req.Address
	u.DOB = req.DOB
	now := time.Now()
	u.CreatedAt = &now
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeMailer struct {
	lastTo   string
	lastCode string
	sendErr  error
	sent     int
}

func (f *fakeMailer) SendOTPEmail(toEmail, code string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.lastTo = toEmail
	f.lastCode = code
	f.sent++
	return nil
}

type fakePublisher struct {
	subjects []string
}

func (f *fakePublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeReservationRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[domain.Kind]map[int64]*domain.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	rows := make(map[domain.Kind]map[int64]*domain.Reservation)
	for _, kind := range domain.KindPriority {
		rows[kind] = make(map[int64]*domain.Reservation)
	}
	return &fakeReservationRepo{nextID: 1, rows: rows}
}

func (f *fakeReservationRepo) Create(_ context.Context, email string, details domain.Details, createdAt time.Time) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &domain.Reservation{
		ID:        f.nextID,
		Kind:      details.Kind(),
		UserEmail: email,
		Details:   details,
		CreatedAt: createdAt,
	}
	f.nextID++
	f.rows[r.Kind][r.ID] = r
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, kind domain.Kind, id int64) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[kind][id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) LatestActive(_ context.Context, kind domain.Kind, email string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.Reservation
	for _, r := range f.rows[kind] {
		if r.UserEmail != email || r.CheckOut != nil {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeReservationRepo) SetCheckIn(_ context.Context, kind domain.Kind, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[kind][id]
	if !ok || r.CheckIn != nil {
		return false, nil
	}
	t := at
	r.CheckIn = &t
	return true, nil
}

func (f *fakeReservationRepo) SetCheckOut(_ context.Context, kind domain.Kind, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[kind][id]
	if !ok || r.CheckIn == nil || r.CheckOut != nil {
		return false, nil
	}
	t := at
	r.CheckOut = &t
	return true, nil
}

func (f *fakeReservationRepo) ListPast(_ context.Context, kind domain.Kind, email string) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var past []domain.Reservation
	for _, r := range f.rows[kind] {
		if r.UserEmail == email && r.CheckOut != nil {
			past = append(past, *r)
		}
	}
	sort.Slice(past, func(i, j int) bool { return past[i].CreatedAt.After(past[j].CreatedAt) })
	return past, nil
}

func (f *fakeReservationRepo) ListByKind(_ context.Context, kind domain.Kind, limit, offset int) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Reservation
	for _, r := range f.rows[kind] {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeReservationRepo) FindByCreatedAt(_ context.Context, kind domain.Kind, email string, createdAt time.Time) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows[kind] {
		if r.UserEmail == email && r.CreatedAt.Equal(createdAt) {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeActivityRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      []domain.Activity
	appendErr error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{nextID: 1}
}

func (f *fakeActivityRepo) Append(_ context.Context, a *domain.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	a.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeActivityRepo) ListRecent(_ context.Context, limit int) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Activity, 0, limit)
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

type fakeAdminRepo struct {
	admins map[string]*domain.Admin
}

func (f *fakeAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	a, ok := f.admins[email]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

type fakeFeedbackRepo struct {
	nextID int64
	rows   []domain.Feedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, req *domain.FeedbackRequest) (*domain.Feedback, error) {
	f.nextID++
	now := time.Now()
	fb := domain.Feedback{ID: f.nextID, Name: req.Name, Email: req.Email, Message: req.Message, CreatedAt: &now}
	f.rows = append(f.rows, fb)
	return &fb, nil
}

func (f *fakeFeedbackRepo) List(_ context.Context, limit, offset int) ([]domain.Feedback, error) {
	if offset >= len(f.rows) {
		return nil, nil
	}
	out := f.rows[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
