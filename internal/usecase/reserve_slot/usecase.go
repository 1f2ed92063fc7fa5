package reserve_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	slotRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/slot"
)

// UseCase use case бронирования слота.
//
// Точка сериализации — условный UPDATE в SlotRepository.Occupy
// (compare-and-set occupied: false -> true): из двух конкурирующих запросов
// на один слот запись в ledger создает только победитель CAS, проигравший
// получает ErrSlotUnavailable. Если запись в ledger после успешного Occupy
// не удалась, слот освобождается компенсирующим Release, чтобы не оставить
// занятый слот без бронирования.
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	courtRepo    CourtRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		courtRepo:    courtRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case бронирования слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSlot: user=%d, slot=%d", req.UserID, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSlot: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Читаем слот
	s, err := uc.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("ReserveSlot: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("ReserveSlot: failed to get slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	// 3. Быстрая проверка занятости (авторитетная — условный UPDATE ниже)
	if s.IsOccupied {
		uc.logger.Warn("ReserveSlot: slot id=%d is already occupied", req.SlotID)
		return nil, ErrSlotUnavailable
	}

	// 4. Нельзя бронировать уже начавшийся слот
	if s.StartsBefore(now) {
		uc.logger.Warn("ReserveSlot: slot id=%d is in the past (date=%s, start=%s)",
			req.SlotID, s.Date.Format(domain.DateFormat), s.StartTime)
		return nil, ErrSlotInPast
	}

	// 5. Получаем корт для денормализации и проверки доступности
	court, err := uc.courtRepo.GetByID(ctx, s.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Error("ReserveSlot: court id=%d referenced by slot id=%d not found", s.CourtID, req.SlotID)
			return nil, fmt.Errorf("%w: court id=%d not found", ErrInternal, s.CourtID)
		}
		uc.logger.Error("ReserveSlot: failed to get court id=%d: %v", s.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	if !court.Available {
		uc.logger.Warn("ReserveSlot: court id=%d is not available", court.ID)
		return nil, ErrCourtUnavailable
	}

	// 6. Занимаем слот (compare-and-set).
	// При гонке двух запросов на один слот здесь проигрывает ровно один.
	if err := uc.slotRepo.Occupy(ctx, req.SlotID, req.UserID); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotOccupied):
			uc.logger.Warn("ReserveSlot: lost the race for slot id=%d", req.SlotID)
			return nil, ErrSlotUnavailable
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		default:
			uc.logger.Error("ReserveSlot: failed to occupy slot id=%d: %v", req.SlotID, err)
			return nil, fmt.Errorf("%w: failed to occupy slot: %v", ErrInternal, err)
		}
	}

	// 7. Создаем запись в ledger
	booking := &domain.Booking{
		UserID:  req.UserID,
		CourtID: s.CourtID,
		SlotID:  s.ID,
		// Денормализация данных корта и слота
		CourtName:   court.Name,
		Price:       s.Price,
		BookingDate: s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		// Компенсирующее освобождение: занятый слот без записи в ledger
		// нарушил бы инвариант occupied == exists(active booking)
		uc.logger.Error("ReserveSlot: failed to create booking for slot id=%d, releasing slot: %v", req.SlotID, err)
		if relErr := uc.slotRepo.Release(ctx, req.SlotID); relErr != nil {
			uc.logger.Error("ReserveSlot: CRITICAL - failed to release slot id=%d after booking failure: %v",
				req.SlotID, relErr)
		}
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	uc.logger.Info("ReserveSlot: successfully created booking id=%d for user=%d, slot=%d",
		created.ID, req.UserID, req.SlotID)

	return &Response{
		ID:          created.ID,
		UserID:      created.UserID,
		CourtID:     created.CourtID,
		SlotID:      created.SlotID,
		Status:      string(created.Status),
		CourtName:   created.CourtName,
		Price:       created.Price,
		BookingDate: created.BookingDate,
		StartTime:   created.StartTime,
		EndTime:     created.EndTime,
		CreatedAt:   created.CreatedAt,
		UpdatedAt:   created.UpdatedAt,
	}, nil
}
