package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/pkg/auth"
	"github.com/frontdesk/visitorapp/pkg/config"
	"github.com/frontdesk/visitorapp/pkg/logger"
)

type AdminService interface {
	Login(ctx context.Context, req *domain.AdminLoginRequest) (*domain.AdminSessionResponse, error)
	Dashboard(ctx context.Context, limit int) (*domain.Dashboard, error)
	ListByKind(ctx context.Context, kind domain.Kind, limit, offset int) ([]domain.Reservation, error)
	ListFeedback(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
	ValidateSession(token string) (*auth.Claims, error)
}

type adminService struct {
	adminRepo       repository.AdminRepository
	activityRepo    repository.ActivityRepository
	reservationRepo repository.ReservationRepository
	userRepo        repository.UserRepository
	feedbackRepo    repository.FeedbackRepository
	config          *config.Config
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	activityRepo repository.ActivityRepository,
	reservationRepo repository.ReservationRepository,
	userRepo repository.UserRepository,
	feedbackRepo repository.FeedbackRepository,
	config *config.Config,
) AdminService {
	return &adminService{
		adminRepo:       adminRepo,
		activityRepo:    activityRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		feedbackRepo:    feedbackRepo,
		config:          config,
	}
}

// Login verifies an admin against the single admin table. Passwords are
// argon2id hashes; the response never reveals whether the email exists.
func (s *adminService) Login(ctx context.Context, req *domain.AdminLoginRequest) (*domain.AdminSessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.UpstreamError("find admin", err)
	}
	if admin == nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, admin.PasswordHash)
	if err != nil {
		return nil, domain.UpstreamError("verify password", err)
	}
	if !valid {
		return nil, fmt.Errorf("invalid email or password")
	}

	token, err := auth.NewSessionToken(admin.Email, auth.RoleAdmin, s.config.Auth.JWTSecret, s.config.Auth.AdminSessionTTL)
	if err != nil {
		return nil, domain.UpstreamError("issue session", err)
	}

	return &domain.AdminSessionResponse{
		SessionToken: token,
		ExpiresIn:    int64(s.config.Auth.AdminSessionTTL.Seconds()),
	}, nil
}

// Dashboard assembles the admin landing view from the activity feed. Each
// feed row is resolved to its reservation via the (email, created_at)
// join; rows that fail to resolve are kept without detail rather than
// dropped. The latest status per visitor is the first row per email in
// the id-descending feed.
func (s *adminService) Dashboard(ctx context.Context, limit int) (*domain.Dashboard, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, domain.UpstreamError("count visitors", err)
	}

	feed, err := s.activityRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.UpstreamError("list activity", err)
	}

	recent := make([]domain.ActivityDetail, 0, len(feed))
	for _, a := range feed {
		detail := domain.ActivityDetail{Activity: a}

		reservation, err := s.reservationRepo.FindByCreatedAt(ctx, a.Purpose, a.Email, a.CreatedAt)
		if err != nil {
			logger.WarnContext(ctx, "Failed to resolve activity detail",
				"error", err, "email", a.Email, "purpose", a.Purpose)
		} else {
			detail.Reservation = reservation
		}

		recent = append(recent, detail)
	}

	seen := make(map[string]bool)
	var latest []domain.ActivityDetail
	counts := make(map[domain.Status]int)
	for _, d := range recent {
		if seen[d.Email] {
			continue
		}
		seen[d.Email] = true
		latest = append(latest, d)
		counts[d.Status]++
	}

	return &domain.Dashboard{
		VisitorCount:   count,
		RecentActivity: recent,
		LatestByEmail:  latest,
		StatusCounts:   counts,
	}, nil
}

func (s *adminService) ListByKind(ctx context.Context, kind domain.Kind, limit, offset int) ([]domain.Reservation, error) {
	reservations, err := s.reservationRepo.ListByKind(ctx, kind, limit, offset)
	if err != nil {
		return nil, domain.UpstreamError("list reservations", err)
	}
	return reservations, nil
}

func (s *adminService) ListFeedback(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	feedback, err := s.feedbackRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.UpstreamError("list feedback", err)
	}
	return feedback, nil
}

func (s *adminService) ValidateSession(token string) (*auth.Claims, error) {
	claims, err := auth.Parse(token, s.config.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("not an admin session")
	}
	return claims, nil
}
