// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/eventdesk/activity-booking/internal/apperr"
	"github.com/eventdesk/activity-booking/internal/model"
	"github.com/eventdesk/activity-booking/internal/service"
)

// Handler holds all HTTP handlers for the activity booking API.
type Handler struct {
	activities    *service.ActivityService
	subscriptions *service.SubscriptionService
	bookings      *service.BookingService
	log           *logrus.Logger
}

// New constructs a Handler.
func New(
	activities *service.ActivityService,
	subscriptions *service.SubscriptionService,
	bookings *service.BookingService,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		activities:    activities,
		subscriptions: subscriptions,
		bookings:      bookings,
		log:           log,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor maps each domain error kind to its HTTP status. The mapping is
// exhaustive over apperr.Kind; anything unknown is an internal error.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.CannotSelectActivities:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.CapacityExceeded:
		// The wire contract reports a full activity as 401, matching the
		// listing gate; the kind stays distinct in code.
		return http.StatusUnauthorized
	case apperr.CannotBook:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes the status for a domain error, or 500 for anything
// without a domain kind.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if kind, ok := apperr.KindOf(err); ok {
		writeError(w, statusFor(kind), err.Error())
		return
	}
	h.log.WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// userIDParam reads the userId query parameter. The authentication layer
// in front of this service resolves tokens to user IDs.
func userIDParam(r *http.Request) (int, bool) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// ─── Activity handlers ────────────────────────────────────────────────────────

// ListDates handles GET /activities?userId=
// Returns all schedule dates for an entitled user.
func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	days, err := h.activities.ListDates(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// ListByDate handles GET /activities/{dateId}?userId=
// Returns the date's activities annotated with vacancies and the user's
// subscribed flag.
func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	dateID, err := strconv.Atoi(chi.URLParam(r, "dateId"))
	if err != nil || dateID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid date id")
		return
	}
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	listings, err := h.activities.ListByDate(r.Context(), dateID, userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// Subscribe handles POST /activities/process
// Runs the admission pipeline and returns the activity projection.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID <= 0 || req.ActivityID <= 0 {
		writeError(w, http.StatusBadRequest, "userId and activityId are required")
		return
	}

	activity, err := h.subscriptions.Subscribe(r.Context(), req.UserID, req.ActivityID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// ListPlaces handles GET /places
// Returns all physical locations, no gating.
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.activities.ListPlaces(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

// ─── Booking handlers ─────────────────────────────────────────────────────────

// GetBooking handles GET /booking?userId=
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	booking, err := h.bookings.Get(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// BookRoom handles POST /booking
func (h *Handler) BookRoom(w http.ResponseWriter, r *http.Request) {
	var req model.BookRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID <= 0 || req.RoomID <= 0 {
		writeError(w, http.StatusBadRequest, "userId and roomId are required")
		return
	}

	booking, err := h.bookings.Book(r.Context(), req.UserID, req.RoomID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ChangeRoom handles PUT /booking/{bookingId}
func (h *Handler) ChangeRoom(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	if bookingID == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}
	var req model.BookRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID <= 0 || req.RoomID <= 0 {
		writeError(w, http.StatusBadRequest, "userId and roomId are required")
		return
	}

	booking, err := h.bookings.ChangeRoom(r.Context(), req.UserID, bookingID, req.RoomID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
