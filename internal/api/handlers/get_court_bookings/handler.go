// Package get_court_bookings HTTP-обработчик получения бронирований корта
package get_court_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgUnauthorized   = "требуется аутентификация"
	msgCourtNotFound  = "корт не найден"
	msgAccessDenied   = "нет прав на просмотр бронирований этого корта"
)

// Handler обработчик получения бронирований корта
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

// Handle обрабатывает GET /api/v1/courts/{courtId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	courtID, err := strconv.ParseInt(vars["courtId"], 10, 64)
	if err != nil || courtID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	req := &models.GetCourtBookingsRequest{
		CourtID:   courtID,
		ActorID:   identity.UserID,
		ActorRole: identity.Role,
	}

	query := r.URL.Query()

	if rawDate := query.Get("date"); rawDate != "" {
		date, err := time.Parse(domain.DateFormat, rawDate)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = ptr.Ptr(date)
	}

	if status := query.Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}

	if rawInclude := query.Get("includeInactive"); rawInclude != "" {
		include, err := strconv.ParseBool(rawInclude)
		if err == nil {
			req.IncludeInactive = include
		}
	}

	resp, err := h.service.GetCourtBookings(r.Context(), req)
	if err != nil {
		h.handleError(w, courtID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, courtID int64, err error) {
	switch {
	case errors.Is(err, bookings.ErrInvalidInput):
		handlers.RespondBadRequest(w, err.Error())
	case errors.Is(err, bookings.ErrCourtNotFound):
		handlers.RespondNotFound(w, msgCourtNotFound)
	case errors.Is(err, bookings.ErrAccessDenied):
		handlers.RespondForbidden(w, msgAccessDenied)
	default:
		h.logger.Error("GetCourtBookings: internal error for court id=%d: %v", courtID, err)
		handlers.RespondInternalError(w)
	}
}
