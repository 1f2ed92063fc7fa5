package reserve_slot

import (
	"context"

	usecase "github.com/m04kA/SMC-CourtBookingService/internal/usecase/reserve_slot"
)

// ReserveSlotUseCase интерфейс use case бронирования слота
type ReserveSlotUseCase interface {
	Execute(ctx context.Context, req *usecase.Request) (*usecase.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
