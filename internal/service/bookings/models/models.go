package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID   int64       // Кто отменяет
	ActorRole domain.Role // Роль отменяющего (из учетной записи, не из запроса)
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID    int64
	ActorID   int64
	ActorRole domain.Role
	Status    *string // Фильтр по статусу (опционально)
}

// GetCourtBookingsRequest запрос на получение бронирований корта
type GetCourtBookingsRequest struct {
	CourtID         int64
	ActorID         int64
	ActorRole       domain.Role
	Date            *time.Time // Фильтр по дате (опционально)
	Status          *string    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включить отменённые и истёкшие бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetCourtBookingsRequest) ToDomainFilter() (domain.CourtBookingsFilter, error) {
	filter := domain.CourtBookingsFilter{
		CourtID:         r.CourtID,
		Date:            r.Date,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"userId"`
	CourtID int64 `json:"courtId"`
	SlotID  int64 `json:"slotId"`

	Status      string  `json:"status"`
	CancelledBy string  `json:"cancelledBy"`
	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CourtName   string  `json:"courtName"`
	Price       float64 `json:"price"`
	BookingDate string  `json:"bookingDate"` // "2025-10-15"
	StartTime   string  `json:"startTime"`   // "10:00"
	EndTime     string  `json:"endTime"`     // "11:00"

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		CourtID:     b.CourtID,
		SlotID:      b.SlotID,
		Status:      string(b.Status),
		CancelledBy: string(b.CancelledBy),
		CourtName:   b.CourtName,
		Price:       b.Price,
		BookingDate: b.BookingDate.Format(domain.DateFormat),
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if bookingResp := FromDomainBooking(b); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	for _, valid := range domain.ValidStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
