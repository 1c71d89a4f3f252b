package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/frontdesk/visitorapp/internal/domain"
)

// RequestOTP handles both the first code request and the user-initiated
// resend: a resend is a fresh request through the same path, which
// overwrites (invalidates) the earlier code.
func (h *Handlers) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	if err := h.sessionService.RequestOTP(r.Context(), &req); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "An OTP has been sent to your email.",
	})
}

func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	response, err := h.sessionService.VerifyOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", "SESSION_EXPIRED")
		return
	}

	var req domain.CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	user, err := h.sessionService.CompleteProfile(r.Context(), claims.Email, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", "SESSION_EXPIRED")
		return
	}

	user, err := h.sessionService.GetProfile(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":             user,
		"profile_complete": user.ProfileComplete(),
	})
}
