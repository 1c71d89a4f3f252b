package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frontdesk/visitorapp/internal/domain"
)

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	response, err := h.adminService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrUpstream) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePagination(r)

	dashboard, err := h.adminService.Dashboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// ListReservationsByKind serves the per-kind admin tables, one table per
// reservation kind.
func (h *Handlers) ListReservationsByKind(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown reservation kind", "INVALID_INPUT")
		return
	}

	limit, offset := parsePagination(r)

	reservations, err := h.adminService.ListByKind(r.Context(), kind, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":         kind,
		"reservations": reservations,
		"count":        len(reservations),
	})
}

func (h *Handlers) ListFeedback(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	feedback, err := h.adminService.ListFeedback(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if feedback == nil {
		feedback = []domain.Feedback{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"feedback": feedback,
		"count":    len(feedback),
	})
}

// SubmitFeedback is public; no session is required to leave feedback.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req domain.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	feedback, err := h.feedbackService.Submit(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feedback)
}
