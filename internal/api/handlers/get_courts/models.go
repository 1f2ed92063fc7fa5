package get_courts

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// CourtResponse корт в ответе каталога
type CourtResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	PricePerHour float64  `json:"pricePerHour"`
	Available    bool     `json:"available"`
	Images       []string `json:"images"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CourtListResponse тело ответа со списком кортов
type CourtListResponse struct {
	Courts []CourtResponse `json:"courts"`
}

func fromDomainCourt(c *domain.Court) CourtResponse {
	images := c.Images
	if images == nil {
		images = []string{}
	}

	return CourtResponse{
		ID:           c.ID,
		Name:         c.Name,
		Location:     c.Location,
		PricePerHour: c.PricePerHour,
		Available:    c.Available,
		Images:       images,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func fromDomainCourts(courts []*domain.Court) *CourtListResponse {
	resp := &CourtListResponse{
		Courts: make([]CourtResponse, 0, len(courts)),
	}

	for _, c := range courts {
		resp.Courts = append(resp.Courts, fromDomainCourt(c))
	}

	return resp
}
