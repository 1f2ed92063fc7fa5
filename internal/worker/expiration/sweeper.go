// Package expiration содержит фоновый sweeper, который переводит
// просроченные активные бронирования в статус expired и освобождает их слоты.
package expiration

import (
	"context"
	"time"
)

// BookingService интерфейс сервиса бронирований
type BookingService interface {
	SweepExpirations(ctx context.Context, now time.Time) (int, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Metrics интерфейс метрик sweeper-а
type Metrics interface {
	ObserveSweep(expired int, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper периодически запускает экспирацию просроченных бронирований.
// Это best-effort фоновая задача: ошибка одного прохода логируется
// и не влияет ни на сервис, ни на следующий тик.
type Sweeper struct {
	service      BookingService
	interval     time.Duration
	timeProvider TimeProvider
	metrics      Metrics // может быть nil, если метрики выключены
	logger       Logger
}

// NewSweeper создает новый sweeper
func NewSweeper(service BookingService, interval time.Duration, metrics Metrics, logger Logger) *Sweeper {
	return &Sweeper{
		service:      service,
		interval:     interval,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// Run запускает цикл sweeper-а и блокируется до отмены контекста.
// Первый проход выполняется сразу, не дожидаясь первого тика.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("Sweeper: started with interval %s", s.interval)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return ctx.Err()
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.timeProvider.Now()

	expired, err := s.service.SweepExpirations(ctx, now)
	if s.metrics != nil {
		s.metrics.ObserveSweep(expired, err)
	}
	if err != nil {
		// Ошибка не фатальна: следующий тик попробует снова
		s.logger.Error("Sweeper: sweep failed: %v", err)
		return
	}

	if expired > 0 {
		s.logger.Info("Sweeper: expired %d bookings", expired)
	}
}
