// Package cancel_booking HTTP-обработчик отмены бронирования
package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgUnauthorized     = "требуется аутентификация"
	msgBookingNotFound  = "бронирование не найдено"
	msgAccessDenied     = "нет прав на отмену этого бронирования"
	msgCannotCancel     = "бронирование уже отменено или истекло"
	msgWindowClosed     = "отмена доступна только до дня игры"
)

// Handler обработчик отмены бронирования
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

// Handle обрабатывает PATCH /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	err = h.service.Cancel(r.Context(), bookingID, &models.CancelBookingRequest{
		ActorID:   identity.UserID,
		ActorRole: identity.Role,
	})
	if err != nil {
		h.handleError(w, bookingID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) handleError(w http.ResponseWriter, bookingID int64, err error) {
	switch {
	case errors.Is(err, bookings.ErrInvalidInput):
		handlers.RespondBadRequest(w, err.Error())
	case errors.Is(err, bookings.ErrBookingNotFound):
		handlers.RespondNotFound(w, msgBookingNotFound)
	case errors.Is(err, bookings.ErrAccessDenied):
		handlers.RespondForbidden(w, msgAccessDenied)
	case errors.Is(err, bookings.ErrCannotCancel):
		handlers.RespondConflict(w, msgCannotCancel)
	case errors.Is(err, bookings.ErrCancellationWindowClosed):
		handlers.RespondForbidden(w, msgWindowClosed)
	default:
		h.logger.Error("CancelBooking: internal error for booking id=%d: %v", bookingID, err)
		handlers.RespondInternalError(w)
	}
}
