// Package get_courts HTTP-обработчики публичного каталога кортов
package get_courts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgCourtNotFound  = "корт не найден"
)

// Handler обработчик каталога кортов
type Handler struct {
	courts CourtProvider
	logger Logger
}

// NewHandler создает новый обработчик
func NewHandler(courts CourtProvider, logger Logger) *Handler {
	return &Handler{
		courts: courts,
		logger: logger,
	}
}

// HandleList обрабатывает GET /api/v1/courts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	courts, err := h.courts.List(r.Context())
	if err != nil {
		h.logger.Error("GetCourts: failed to list courts: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomainCourts(courts))
}

// HandleGet обрабатывает GET /api/v1/courts/{courtId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courtID, err := strconv.ParseInt(vars["courtId"], 10, 64)
	if err != nil || courtID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	court, err := h.courts.GetByID(r.Context(), courtID)
	if err != nil {
		if errors.Is(err, courtstore.ErrCourtNotFound) {
			handlers.RespondNotFound(w, msgCourtNotFound)
			return
		}
		h.logger.Error("GetCourts: failed to get court id=%d: %v", courtID, err)
		handlers.RespondInternalError(w)
		return
	}

	resp := fromDomainCourt(court)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
