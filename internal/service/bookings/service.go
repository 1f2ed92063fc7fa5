package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями: чтение, отмена и экспирация.
// Создание бронирования вынесено в отдельный use case (usecase/reserve_slot).
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	courtRepo    CourtRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	courtRepo CourtRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		courtRepo:    courtRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Доступно владельцу бронирования, владельцу корта и администратору.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Identity) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d", id, actor.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkBookingAccess(ctx, booking, actor); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d to booking id=%d", actor.UserID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя, новые первыми.
// Доступно самому пользователю и администратору.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, actor=%d, status=%v",
		req.UserID, req.ActorID, req.Status)

	actor := domain.Identity{UserID: req.ActorID, Role: req.ActorRole}
	if req.UserID != actor.UserID && !actor.IsAdmin() {
		s.logger.Warn("GetUserBookings: access denied for actor=%d to user=%d bookings", req.ActorID, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// GetCourtBookings получает бронирования корта с фильтрацией по дате и статусу.
// Доступно владельцу корта и администратору.
func (s *Service) GetCourtBookings(ctx context.Context, req *models.GetCourtBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCourtBookings: fetching bookings for court=%d, actor=%d", req.CourtID, req.ActorID)

	court, err := s.courtRepo.GetByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.logger.Warn("GetCourtBookings: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		s.logger.Error("GetCourtBookings: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: GetCourtBookings - failed to get court: %v", ErrInternal, err)
	}

	actor := domain.Identity{UserID: req.ActorID, Role: req.ActorRole}
	if court.OwnerID != actor.UserID && !actor.IsAdmin() {
		s.logger.Warn("GetCourtBookings: access denied for actor=%d to court=%d", req.ActorID, req.CourtID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCourtBookings: invalid filter for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByCourtWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCourtBookings: repository error for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: GetCourtBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и освобождает слот.
// Правила доступа:
//   - пользователь может отменить своё бронирование, но только до дня игры;
//   - владелец корта и администратор могут отменить любое бронирование корта
//     без ограничения по времени (cancelled_by = owner).
//
// Освобождение слота и перевод бронирования в статус cancelled выполняются
// в одной транзакции: условный Finalize гарантирует, что при гонке с
// экспирацией слот не будет освобожден дважды с расхождением статусов.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by actor=%d role=%s", bookingID, req.ActorID, req.ActorRole)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if booking.IsTerminal() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	actor := domain.Identity{UserID: req.ActorID, Role: req.ActorRole}

	court, err := s.courtRepo.GetByID(ctx, booking.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.logger.Error("Cancel: court id=%d referenced by booking id=%d not found", booking.CourtID, bookingID)
			return ErrCourtNotFound
		}
		s.logger.Error("Cancel: failed to get court id=%d: %v", booking.CourtID, err)
		return fmt.Errorf("%w: Cancel - failed to get court: %v", ErrInternal, err)
	}

	// Привилегированные роли: администратор и владелец корта
	privileged := actor.IsAdmin() || court.OwnerID == actor.UserID

	if !privileged && booking.UserID != actor.UserID {
		s.logger.Warn("Cancel: access denied for actor=%d to booking id=%d", req.ActorID, bookingID)
		return ErrAccessDenied
	}

	// Непривилегированный пользователь не может отменить бронирование
	// в день игры или позже
	if !privileged && booking.IsOnOrBefore(s.timeProvider.Now()) {
		s.logger.Warn("Cancel: cancellation window closed for booking id=%d, date=%s",
			bookingID, booking.BookingDate.Format(domain.DateFormat))
		return ErrCancellationWindowClosed
	}

	cancelledBy := domain.CancelledByOwner
	if booking.UserID == actor.UserID {
		cancelledBy = domain.CancelledByUser
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Finalize(txCtx, bookingID, domain.StatusCancelled, cancelledBy); err != nil {
			return err
		}
		return s.slotRepo.Release(txCtx, booking.SlotID)
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrAlreadyFinalized):
			// Проигранная гонка с экспирацией или повторной отменой
			s.logger.Warn("Cancel: booking id=%d was finalized concurrently", bookingID)
			return ErrCannotCancel
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return ErrBookingNotFound
		default:
			s.logger.Error("Cancel: failed to cancel booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d, cancelled_by=%s, slot id=%d released",
		bookingID, cancelledBy, booking.SlotID)
	return nil
}

// SweepExpirations переводит в статус expired все активные бронирования,
// чей слот закончился раньше now, и освобождает их слоты.
// Возвращает количество обработанных бронирований.
//
// Операция безопасна при конкурентном выполнении с собой и с Cancel:
// бронирование, уже переведенное в терминальный статус другим вызовом,
// просто пропускается. Ошибка по отдельному бронированию логируется
// и не прерывает проход.
func (s *Service) SweepExpirations(ctx context.Context, now time.Time) (int, error) {
	active, err := s.bookingRepo.GetActive(ctx)
	if err != nil {
		s.logger.Error("SweepExpirations: failed to get active bookings: %v", err)
		return 0, fmt.Errorf("%w: SweepExpirations - repository error: %v", ErrInternal, err)
	}

	expired := 0
	for _, b := range active {
		if !b.EndsBefore(now) {
			continue
		}

		bookingID, slotID := b.ID, b.SlotID
		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			if err := s.bookingRepo.Finalize(txCtx, bookingID, domain.StatusExpired, domain.CancelledByNone); err != nil {
				return err
			}
			return s.slotRepo.Release(txCtx, slotID)
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrAlreadyFinalized) {
				// Кто-то успел отменить или экспирировать раньше нас
				continue
			}
			s.logger.Error("SweepExpirations: failed to expire booking id=%d: %v", bookingID, err)
			continue
		}

		expired++
	}

	if expired > 0 {
		s.logger.Info("SweepExpirations: expired %d of %d active bookings", expired, len(active))
	}

	return expired, nil
}

// checkBookingAccess проверяет, что актор имеет доступ к бронированию:
// владелец бронирования, владелец корта или администратор
func (s *Service) checkBookingAccess(ctx context.Context, booking *domain.Booking, actor domain.Identity) error {
	if booking.UserID == actor.UserID || actor.IsAdmin() {
		return nil
	}

	court, err := s.courtRepo.GetByID(ctx, booking.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			return ErrAccessDenied
		}
		return fmt.Errorf("%w: checkBookingAccess - failed to get court: %v", ErrInternal, err)
	}

	if court.OwnerID != actor.UserID {
		return ErrAccessDenied
	}

	return nil
}
