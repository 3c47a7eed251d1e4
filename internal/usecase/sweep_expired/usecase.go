package sweep_expired

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// UseCase use case фоновой очистки просроченных записей листа ожидания
//
// Идемпотентен: повторный запуск по тому же состоянию ничего не находит.
// Ошибка на одном слоте не прерывает обработку остальных, недоделанное
// доберет следующий запуск
type UseCase struct {
	waitlistRepo WaitlistRepository
	sweeper      WaitlistSweeper
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	waitlistRepo WaitlistRepository,
	sweeper WaitlistSweeper,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		waitlistRepo: waitlistRepo,
		sweeper:      sweeper,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute удаляет все просроченные записи и уведомляет их владельцев
// Возвращает количество удаленных записей
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	now := uc.timeProvider.Now()

	slotIDs, err := uc.waitlistRepo.GetExpiredSlotIDs(ctx, now)
	if err != nil {
		uc.logger.Error("SweepExpired: failed to get expired slot ids: %v", err)
		return 0, fmt.Errorf("%w: failed to get expired slot ids: %v", ErrInternal, err)
	}

	if len(slotIDs) == 0 {
		return 0, nil
	}

	uc.logger.Info("SweepExpired: found %d slots with expired entries", len(slotIDs))

	total := 0
	for _, slotID := range slotIDs {
		removed, err := uc.sweeper.RemoveExpired(ctx, slotID)
		if err != nil {
			// Частичный результат слота учитываем, остаток доберет следующий запуск
			uc.logger.Error("SweepExpired: failed to sweep slot=%d: %v", slotID, err)
		}

		for _, entry := range removed {
			uc.notifyExpired(ctx, entry)
		}

		total += len(removed)
	}

	if total > 0 {
		uc.metrics.AddWaitlistExpired(total)
		uc.logger.Info("SweepExpired: removed %d expired entries", total)
	}

	return total, nil
}

// notifyExpired уведомляет студента об удалении его записи по TTL
// Потеря уведомления не откатывает удаление
func (uc *UseCase) notifyExpired(ctx context.Context, entry *domain.WaitlistEntry) {
	err := uc.notifier.NotifyWithGracefulDegradation(ctx, entry.StudentID, domain.NotificationExpired, map[string]string{
		"slot_id":    strconv.FormatInt(entry.SlotID, 10),
		"expired_at": entry.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		uc.metrics.IncNotificationFailure()
	}
}
