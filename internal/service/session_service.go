package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/internal/mailer"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/pkg/auth"
	"github.com/frontdesk/visitorapp/pkg/config"
	"github.com/frontdesk/visitorapp/pkg/events"
	"github.com/frontdesk/visitorapp/pkg/logger"
)

type SessionService interface {
	RequestOTP(ctx context.Context, req *domain.RequestOTPRequest) error
	VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.SessionResponse, error)
	CompleteProfile(ctx context.Context, email string, req *domain.CompleteProfileRequest) (*domain.User, error)
	GetProfile(ctx context.Context, email string) (*domain.User, error)
	ValidateSession(token string) (*auth.Claims, error)
}

type sessionService struct {
	userRepo repository.UserRepository
	mailer   mailer.Service
	eventBus events.Publisher
	config   *config.Config
	now      func() time.Time
}

func NewSessionService(
	userRepo repository.UserRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) SessionService {
	return &sessionService{
		userRepo: userRepo,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
		now:      time.Now,
	}
}

// RequestOTP writes a fresh 6-digit code onto the user row (creating it
// on first contact) and mails it. The upsert invalidates any earlier
// unconsumed code for the email. A delivery failure is reported as
// retryable but the upsert is not rolled back: the next request generates
// a new code through the same path anyway.
func (s *sessionService) RequestOTP(ctx context.Context, req *domain.RequestOTPRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	code := generateCode()
	expiresAt := s.now().Add(s.config.Auth.OTPTTL)

	if err := s.userRepo.UpsertOTP(ctx, req.Email, code, expiresAt); err != nil {
		return domain.UpstreamError("store otp", err)
	}

	if err := s.eventBus.Publish(ctx, events.OTPRequested, events.OTPRequestedEvent{
		Email:     req.Email,
		ExpiresAt: expiresAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish otp requested event", "error", err, "email", req.Email)
	}

	if err := s.mailer.SendOTPEmail(req.Email, code); err != nil {
		logger.ErrorContext(ctx, "Failed to send otp email", "error", err, "email", req.Email)
		return domain.UpstreamError("send otp email", err)
	}

	return nil
}

// VerifyOTP checks the submitted code and, on success, consumes it and
// opens a 10-minute session. The mismatch check runs before the expiry
// check so an expired code reported as Expired really was the issued one;
// expiry clears nothing, which keeps an expired code unusable rather
// than resurrectable.
func (s *sessionService) VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.UpstreamError("find user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", domain.ErrNotFound, req.Email)
	}

	if user.OTPCode == nil || *user.OTPCode != req.Code {
		return nil, domain.ErrInvalidCode
	}

	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return nil, domain.ErrExpired
	}

	if err := s.userRepo.ClearOTP(ctx, req.Email); err != nil {
		return nil, domain.UpstreamError("clear otp", err)
	}

	token, err := auth.NewSessionToken(req.Email, auth.RoleVisitor, s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return nil, domain.UpstreamError("issue session", err)
	}

	return &domain.SessionResponse{
		SessionToken:    token,
		ExpiresIn:       int64(s.config.Auth.SessionTTL.Seconds()),
		ProfileComplete: user.ProfileComplete(),
	}, nil
}

func (s *sessionService) CompleteProfile(ctx context.Context, email string, req *domain.CompleteProfileRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateProfile(ctx, email, req)
	if err != nil {
		return nil, domain.UpstreamError("update profile", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}

	return user, nil
}

func (s *sessionService) GetProfile(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.UpstreamError("find user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	return user, nil
}

func (s *sessionService) ValidateSession(token string) (*auth.Claims, error) {
	claims, err := auth.Parse(token, s.config.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != auth.RoleVisitor {
		return nil, fmt.Errorf("not a visitor session")
	}
	return claims, nil
}

func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// Degraded fallback, still 6 digits
		return fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
