package sweep_expired

import (
	"context"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	GetExpiredSlotIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// WaitlistSweeper интерфейс очистки просроченных записей слота
// RemoveExpired берет per-slot блокировку сам
type WaitlistSweeper interface {
	RemoveExpired(ctx context.Context, slotID int64) ([]*domain.WaitlistEntry, error)
}

// Notifier интерфейс для отправки уведомлений студентам
type Notifier interface {
	NotifyWithGracefulDegradation(ctx context.Context, studentID int64, kind domain.NotificationKind, payload map[string]string) error
}

// Metrics интерфейс для учета бизнес-метрик
type Metrics interface {
	AddWaitlistExpired(n int)
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
