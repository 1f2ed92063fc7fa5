package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
)

// UseCase use case для получения свободных слотов корта на дату
type UseCase struct {
	slotRepo     SlotRepository
	courtRepo    CourtRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	courtRepo CourtRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		courtRepo:    courtRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения свободных слотов.
// Операция только читает данные и не имеет побочных эффектов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: court=%d, date=%s", req.CourtID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Прошедшие даты не имеет смысла показывать
	if isDateInPast(req.Date, uc.timeProvider.Now()) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Проверяем существование корта
	if _, err := uc.courtRepo.GetByID(ctx, req.CourtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("GetAvailableSlots: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	// 4. Получаем свободные слоты (отсортированы по времени начала)
	slots, err := uc.slotRepo.GetAvailableByCourtAndDate(ctx, req.CourtID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get slots for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	resp := &Response{
		CourtID: req.CourtID,
		Date:    req.Date,
		Slots:   make([]Slot, 0, len(slots)),
	}

	for _, s := range slots {
		resp.Slots = append(resp.Slots, Slot{
			ID:        s.ID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Price:     s.Price,
		})
	}

	uc.logger.Info("GetAvailableSlots: found %d free slots for court=%d, date=%s",
		len(resp.Slots), req.CourtID, req.Date.Format(domain.DateFormat))

	return resp, nil
}
