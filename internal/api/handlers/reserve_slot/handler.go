// Package reserve_slot HTTP-обработчик создания бронирования
package reserve_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/reserve_slot"
)

const (
	msgInvalidBody      = "некорректное тело запроса"
	msgInvalidSlotID    = "некорректный ID слота"
	msgUnauthorized     = "требуется аутентификация"
	msgSlotNotFound     = "слот не найден"
	msgSlotUnavailable  = "слот уже занят"
	msgSlotInPast       = "слот уже начался или прошел"
	msgCourtUnavailable = "корт недоступен для бронирования"
)

// Handler обработчик создания бронирования
type Handler struct {
	useCase ReserveSlotUseCase
	logger  Logger
}

// NewHandler создает новый обработчик
func NewHandler(useCase ReserveSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle обрабатывает POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("ReserveSlot: failed to decode request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	if req.SlotID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &usecase.Request{
		UserID: identity.UserID,
		SlotID: req.SlotID,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, fromUseCaseResponse(resp))
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		handlers.RespondBadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrSlotNotFound):
		handlers.RespondNotFound(w, msgSlotNotFound)
	case errors.Is(err, usecase.ErrSlotUnavailable):
		handlers.RespondConflict(w, msgSlotUnavailable)
	case errors.Is(err, usecase.ErrSlotInPast):
		handlers.RespondBadRequest(w, msgSlotInPast)
	case errors.Is(err, usecase.ErrCourtUnavailable):
		handlers.RespondConflict(w, msgCourtUnavailable)
	default:
		h.logger.Error("ReserveSlot: internal error: %v", err)
		handlers.RespondInternalError(w)
	}
}
