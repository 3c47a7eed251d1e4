package request_seat

import (
	"context"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CountSeatOccupying(ctx context.Context, slotID int64) (int, error)
	HasSeatOccupying(ctx context.Context, studentID, slotID int64) (bool, error)
}

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	GetActiveByStudentAndSlot(ctx context.Context, studentID, slotID int64, now time.Time) (*domain.WaitlistEntry, error)
}

// WaitlistService интерфейс сервиса листа ожидания
type WaitlistService interface {
	Enqueue(ctx context.Context, studentID, slotID int64) (*domain.WaitlistEntry, error)
}

// Notifier интерфейс для отправки уведомлений студентам
type Notifier interface {
	NotifyWithGracefulDegradation(ctx context.Context, studentID int64, kind domain.NotificationKind, payload map[string]string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotLocker реестр per-slot блокировок, разделяемый с сервисом листа ожидания
type SlotLocker interface {
	Lock(key int64)
	Unlock(key int64)
}

// Metrics интерфейс для учета бизнес-метрик
type Metrics interface {
	IncSeatConfirmed()
	IncStudentWaitlisted()
	IncNotificationFailure()
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
