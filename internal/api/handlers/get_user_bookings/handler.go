// Package get_user_bookings HTTP-обработчик получения бронирований пользователя
package get_user_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgUnauthorized  = "требуется аутентификация"
	msgAccessDenied  = "нет прав на просмотр бронирований этого пользователя"
)

// Handler обработчик получения бронирований пользователя
type Handler struct {
	service BookingService
	logger  Logger
}

// NewHandler создает новый обработчик
func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle обрабатывает GET /api/v1/users/{userId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil || userID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	req := &models.GetUserBookingsRequest{
		UserID:    userID,
		ActorID:   identity.UserID,
		ActorRole: identity.Role,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}

	resp, err := h.service.GetUserBookings(r.Context(), req)
	if err != nil {
		h.handleError(w, userID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, bookings.ErrInvalidInput):
		handlers.RespondBadRequest(w, err.Error())
	case errors.Is(err, bookings.ErrAccessDenied):
		handlers.RespondForbidden(w, msgAccessDenied)
	default:
		h.logger.Error("GetUserBookings: internal error for user id=%d: %v", userID, err)
		handlers.RespondInternalError(w)
	}
}
