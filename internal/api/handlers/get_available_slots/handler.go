// Package get_available_slots HTTP-обработчик получения свободных слотов корта
package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgMissingDate    = "параметр date обязателен"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateInPast     = "дата не может быть в прошлом"
	msgCourtNotFound  = "корт не найден"
)

// Handler обработчик получения свободных слотов
type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

// NewHandler создает новый обработчик
func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle обрабатывает GET /api/v1/courts/{courtId}/available-slots?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courtID, err := strconv.ParseInt(vars["courtId"], 10, 64)
	if err != nil || courtID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &usecase.Request{
		CourtID: courtID,
		Date:    date,
	})
	if err != nil {
		h.handleError(w, courtID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromUseCaseResponse(resp))
}

func (h *Handler) handleError(w http.ResponseWriter, courtID int64, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		handlers.RespondBadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidDate):
		handlers.RespondBadRequest(w, msgDateInPast)
	case errors.Is(err, usecase.ErrCourtNotFound):
		handlers.RespondNotFound(w, msgCourtNotFound)
	default:
		h.logger.Error("GetAvailableSlots: internal error for court id=%d: %v", courtID, err)
		handlers.RespondInternalError(w)
	}
}
