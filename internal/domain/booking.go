package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
	StatusExpired   BookingStatus = "expired"
)

// CancelledBy identifies who cancelled a booking
type CancelledBy string

const (
	CancelledByNone  CancelledBy = "none"
	CancelledByUser  CancelledBy = "user"
	CancelledByOwner CancelledBy = "owner"
)

// Booking represents a user's reservation of a court slot.
// Court name, price and slot times are denormalized for history:
// a booking stays readable even if the court or slot is edited later.
type Booking struct {
	ID      int64
	UserID  int64
	CourtID int64
	SlotID  int64

	Status      BookingStatus
	CancelledBy CancelledBy
	CancelledAt *time.Time

	// Denormalized data for history
	CourtName   string
	Price       float64
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking has not been cancelled or expired
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// IsTerminal returns true if the booking is in a terminal state.
// Terminal states never transition again.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusExpired
}

// EndsBefore returns true if the booked slot ends strictly before the given moment
func (b *Booking) EndsBefore(now time.Time) bool {
	end, err := b.EndTime.On(b.BookingDate)
	if err != nil {
		return false
	}
	return end.Before(now)
}

// CourtBookingsFilter фильтр для получения бронирований корта
type CourtBookingsFilter struct {
	CourtID         int64          // Обязательный параметр
	Date            *time.Time     // Фильтр по дате (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые и истёкшие бронирования
}

// IsOnOrBefore returns true if the booked slot's date is the same day as now or earlier.
// Used by the cancellation window policy: regular users may only cancel
// bookings scheduled for a future date.
func (b *Booking) IsOnOrBefore(now time.Time) bool {
	y1, m1, d1 := b.BookingDate.Date()
	y2, m2, d2 := now.Date()
	bookingDay := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !bookingDay.After(nowDay)
}
