package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Slot represents one bookable time window for one court on one date.
// Slots are provisioned in bulk ahead of time and only flip between
// free and occupied; they are never deleted while a booking references them.
type Slot struct {
	ID         int64
	CourtID    int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Price      float64
	IsOccupied bool
	OccupantID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree returns true if the slot can be reserved
func (s *Slot) IsFree() bool {
	return !s.IsOccupied
}

// StartsBefore returns true if the slot's start moment is strictly before now
func (s *Slot) StartsBefore(now time.Time) bool {
	start, err := s.StartTime.On(s.Date)
	if err != nil {
		return false
	}
	return start.Before(now)
}

// EndsBefore returns true if the slot's end moment is strictly before now
func (s *Slot) EndsBefore(now time.Time) bool {
	end, err := s.EndTime.On(s.Date)
	if err != nil {
		return false
	}
	return end.Before(now)
}
