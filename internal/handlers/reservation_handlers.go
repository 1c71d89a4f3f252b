package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frontdesk/visitorapp/internal/domain"
	"github.com/go-chi/chi/v5"
)

// One creation route per purpose, mirroring the four visit-type forms.
// Each decodes its own detail shape; validation lives on the detail type.

func (h *Handlers) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var details domain.VisitDetails
	h.createReservation(w, r, &details)
}

func (h *Handlers) CreatePitch(w http.ResponseWriter, r *http.Request) {
	var details domain.PitchDetails
	h.createReservation(w, r, &details)
}

func (h *Handlers) CreateInterview(w http.ResponseWriter, r *http.Request) {
	var details domain.InterviewDetails
	h.createReservation(w, r, &details)
}

func (h *Handlers) CreateTechEvent(w http.ResponseWriter, r *http.Request) {
	var details domain.TechEventDetails
	h.createReservation(w, r, &details)
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request, into interface{}) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", "SESSION_EXPIRED")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	var details domain.Details
	switch d := into.(type) {
	case *domain.VisitDetails:
		details = *d
	case *domain.PitchDetails:
		details = *d
	case *domain.InterviewDetails:
		details = *d
	case *domain.TechEventDetails:
		details = *d
	default:
		writeError(w, http.StatusBadRequest, "Unknown reservation kind", "INVALID_INPUT")
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), claims.Email, details)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := reservationParams(w, r)
	if !ok {
		return
	}

	reservation, err := h.reservationService.CheckIn(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handlers) CheckOut(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := reservationParams(w, r)
	if !ok {
		return
	}

	reservation, err := h.reservationService.CheckOut(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

// CurrentReservation returns the visitor's single active reservation, or
// 204 when there is none and the visit-type chooser should render.
func (h *Handlers) CurrentReservation(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", "SESSION_EXPIRED")
		return
	}

	reservation, err := h.reservationService.Current(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if reservation == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handlers) ListPastReservations(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", "SESSION_EXPIRED")
		return
	}

	past, err := h.reservationService.ListPast(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if past == nil {
		past = []domain.Reservation{}
	}

	writeJSON(w, http.StatusOK, past)
}

func reservationParams(w http.ResponseWriter, r *http.Request) (domain.Kind, int64, bool) {
	kind, ok := domain.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown reservation kind", "INVALID_INPUT")
		return "", 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid reservation id", "INVALID_INPUT")
		return "", 0, false
	}

	return kind, id, true
}
