package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/frontdesk/visitorapp/internal/repository"
	"github.com/frontdesk/visitorapp/internal/service"
	"github.com/frontdesk/visitorapp/pkg/auth"
	"github.com/frontdesk/visitorapp/pkg/config"
	"github.com/frontdesk/visitorapp/pkg/logger"
)

type Handlers struct {
	sessionService     service.SessionService
	reservationService service.ReservationService
	adminService       service.AdminService
	feedbackService    service.FeedbackService
	rateLimitRepo      repository.RateLimitRepository
	config             *config.Config
}

func New(
	sessionService service.SessionService,
	reservationService service.ReservationService,
	adminService service.AdminService,
	feedbackService service.FeedbackService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		sessionService:     sessionService,
		reservationService: reservationService,
		adminService:       adminService,
		feedbackService:    feedbackService,
		rateLimitRepo:      rateLimitRepo,
		config:             config,
	}
}

type claimsKey struct{}

// RequireVisitorSession gates profile and reservation routes. Expiry is
// evaluated lazily on each request; there is nothing to revoke
// server-side, a stale token is simply rejected.
func (h *Handlers) RequireVisitorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.sessionService.ValidateSession(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Session missing or expired. Please log in again.", "SESSION_EXPIRED")
			return
		}

		ctx := context.WithValue(r.Context(), logger.VisitorKey, claims.Email)
		ctx = context.WithValue(ctx, claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdminSession gates the dashboard routes with the separate admin
// token, under the same 10-minute window.
func (h *Handlers) RequireAdminSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.adminService.ValidateSession(bearerToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Admin session missing or expired.", "SESSION_EXPIRED")
			return
		}

		ctx := context.WithValue(r.Context(), logger.AdminKey, claims.Email)
		ctx = context.WithValue(ctx, claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OTPRateLimit throttles code requests per client IP. Fail open.
func (h *Handlers) OTPRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "otp_request:" + getClientIP(r)

		allowed, err := h.rateLimitRepo.CheckRateLimit(r.Context(), key, h.config.Auth.OTPRateLimit, h.config.Auth.OTPRateWindow)
		if err != nil {
			logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Helper functions

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	response := map[string]string{
		"error": message,
		"code":  code,
	}
	writeJSON(w, statusCode, response)
}

// writeServiceError maps the error taxonomy to HTTP. Every failure is
// surfaced as a human-readable message; nothing is fatal, the client can
// re-attempt the same action.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, "Invalid OTP. Please try again.", "INVALID_CODE")
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusUnauthorized, "OTP has expired. Please request a new one.", "CODE_EXPIRED")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, domain.ErrUpstream):
		writeError(w, http.StatusBadGateway, "A backing service failed. Please try again.", "UPSTREAM_ERROR")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
