package reserve_slot

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса на бронирование слота
type Request struct {
	UserID int64 // ID пользователя (из аутентифицированной identity)
	SlotID int64 // ID слота
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID      int64  // ID созданного бронирования
	UserID  int64  // ID пользователя
	CourtID int64  // ID корта
	SlotID  int64  // ID слота
	Status  string // Статус бронирования

	// Денормализованные данные
	CourtName   string           // Название корта
	Price       float64          // Цена слота
	BookingDate time.Time        // Дата игры
	StartTime   types.TimeString // Время начала
	EndTime     types.TimeString // Время окончания

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
