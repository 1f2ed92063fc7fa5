package reserve_slot

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/reserve_slot"
)

// CreateBookingRequest тело запроса на бронирование слота
type CreateBookingRequest struct {
	SlotID int64 `json:"slotId"`
}

// BookingResponse тело ответа с созданным бронированием
type BookingResponse struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"userId"`
	CourtID int64  `json:"courtId"`
	SlotID  int64  `json:"slotId"`
	Status  string `json:"status"`

	CourtName   string  `json:"courtName"`
	Price       float64 `json:"price"`
	BookingDate string  `json:"bookingDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func fromUseCaseResponse(resp *usecase.Response) *BookingResponse {
	return &BookingResponse{
		ID:          resp.ID,
		UserID:      resp.UserID,
		CourtID:     resp.CourtID,
		SlotID:      resp.SlotID,
		Status:      resp.Status,
		CourtName:   resp.CourtName,
		Price:       resp.Price,
		BookingDate: resp.BookingDate.Format(domain.DateFormat),
		StartTime:   resp.StartTime.String(),
		EndTime:     resp.EndTime.String(),
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
}
