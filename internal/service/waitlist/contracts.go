package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error)
	GetActiveBySlot(ctx context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error)
	GetActiveByStudent(ctx context.Context, studentID int64, now time.Time) ([]*domain.WaitlistEntry, error)
	GetActiveByStudentAndSlot(ctx context.Context, studentID, slotID int64, now time.Time) (*domain.WaitlistEntry, error)
	CountActiveBySlot(ctx context.Context, slotID int64, now time.Time) (int, error)
	GetExpiredBySlot(ctx context.Context, slotID int64, now time.Time) ([]*domain.WaitlistEntry, error)
	Delete(ctx context.Context, id int64) error
	ShiftPrioritiesAfter(ctx context.Context, slotID int64, priority int) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	HasSeatOccupying(ctx context.Context, studentID, slotID int64) (bool, error)
}

// CapacityLedger интерфейс для проверки наличия свободных мест
type CapacityLedger interface {
	HasCapacity(ctx context.Context, slotID int64) (bool, error)
}

// SlotLocker реестр per-slot блокировок
// Один и тот же экземпляр разделяется сервисом и use case-ами,
// чтобы все мутации очереди одного слота были сериализованы
type SlotLocker interface {
	Lock(key int64)
	Unlock(key int64)
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
