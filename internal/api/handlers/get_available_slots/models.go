package get_available_slots

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
)

// SlotResponse свободный слот в ответе
type SlotResponse struct {
	ID        int64   `json:"id"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Price     float64 `json:"price"`
}

// SlotListResponse тело ответа со свободными слотами корта на дату
type SlotListResponse struct {
	CourtID int64          `json:"courtId"`
	Date    string         `json:"date"`
	Slots   []SlotResponse `json:"slots"`
}

func fromUseCaseResponse(resp *usecase.Response) *SlotListResponse {
	out := &SlotListResponse{
		CourtID: resp.CourtID,
		Date:    resp.Date.Format(domain.DateFormat),
		Slots:   make([]SlotResponse, 0, len(resp.Slots)),
	}

	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{
			ID:        s.ID,
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
			Price:     s.Price,
		})
	}

	return out
}
