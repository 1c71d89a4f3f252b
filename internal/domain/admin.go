package domain

import (
	"strings"
	"time"
)

// Admin is a row of the single admin table. Passwords are stored as
// argon2id hashes; the lookup contract stays one row by email.
type Admin struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *AdminLoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *AdminLoginRequest) Validate() error {
	if r.Email == "" {
		return ValidationError("email")
	}
	if r.Password == "" {
		return ValidationError("password")
	}
	return nil
}

type AdminSessionResponse struct {
	SessionToken string `json:"session_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Feedback is a contact-form submission.
type Feedback struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (r *FeedbackRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Message = strings.TrimSpace(r.Message)
}

func (r *FeedbackRequest) Validate() error {
	if r.Name == "" {
		return ValidationError("name")
	}
	if r.Email == "" {
		return ValidationError("email")
	}
	if r.Message == "" {
		return ValidationError("message")
	}
	return nil
}

// Dashboard is the admin landing view: the recent feed resolved to detail
// rows, the latest status per visitor, and status totals for the chart.
type Dashboard struct {
	VisitorCount   int64            `json:"visitor_count"`
	RecentActivity []ActivityDetail `json:"recent_activity"`
	LatestByEmail  []ActivityDetail `json:"latest_by_email"`
	StatusCounts   map[Status]int   `json:"status_counts"`
}
