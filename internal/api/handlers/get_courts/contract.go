package get_courts

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// CourtProvider интерфейс каталога кортов.
// Читающие операции каталога не содержат бизнес-логики,
// поэтому обработчик работает напрямую с репозиторием.
type CourtProvider interface {
	List(ctx context.Context) ([]*domain.Court, error)
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
