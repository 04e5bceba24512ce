package adaptor

import (
	"encoding/json"
	"net/http"

	"ev-service-center/internal/dto/request"
	"ev-service-center/internal/usecase"
	"ev-service-center/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// A customer may only book for themselves; admins can book on
	// behalf of anyone.
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		role, _ := utils.GetRoleFromContext(r.Context())
		if role != utils.RoleAdmin {
			req.UserID = userID.String()
		}
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, booking)
}

// GetBooking handles GET /api/bookings/{id} and the internal lookup
// GET /internal/bookings/items/{id}.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// ListMyBookings handles GET /api/bookings/my.
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Missing user identity")
		return
	}

	bookings, err := h.service.ListBookingsByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "list my bookings")
		return
	}

	utils.ResponseSuccess(w, bookings)
}

// ListBookings handles GET /api/bookings (admin only).
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, bookings)
}

// SetStatus handles PUT /api/bookings/{id}/status (admin only) and the
// internal PUT /internal/bookings/items/{id}/status.
func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req request.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		utils.ResponseBadRequest(w, "Validation failed", fields)
		return
	}

	booking, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// DeleteBooking handles DELETE /api/bookings/{id} (admin only).
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete booking")
		return
	}

	utils.ResponseSuccess(w, map[string]string{"message": "Booking deleted"})
}
