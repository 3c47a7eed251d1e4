package ratelimit

import (
	"context"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// WindowStore хранилище окон фиксированного лимита
// Реализации: in-memory map (single instance, тесты) и Redis
// (разделяемое состояние при нескольких инстансах)
type WindowStore interface {
	Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (domain.RateLimitDecision, error)
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
