package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	CourtID int64     // ID корта
	Date    time.Time // Дата (без времени)
}

// Response модель ответа со списком свободных слотов
type Response struct {
	CourtID int64     // ID корта
	Date    time.Time // Дата, на которую запрашивались слоты
	Slots   []Slot    // Свободные слоты, отсортированные по времени начала
}

// Slot модель свободного слота
type Slot struct {
	ID        int64            // ID слота
	StartTime types.TimeString // Время начала (например, "10:00")
	EndTime   types.TimeString // Время окончания (например, "11:00")
	Price     float64          // Цена за слот
}
