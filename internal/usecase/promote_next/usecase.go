package promote_next

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
)

// UseCase use case промоушена первого в очереди студента на освободившееся место
//
// Снятие записи из очереди и создание бронирования выполняются в одной
// сериализуемой транзакции под per-slot блокировкой: при сбое на любом шаге
// студент остается в очереди на своей позиции
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	queue        WaitlistQueue
	notifier     Notifier
	txManager    TransactionManager
	locker       SlotLocker
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	queue WaitlistQueue,
	notifier Notifier,
	txManager TransactionManager,
	locker SlotLocker,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		queue:        queue,
		notifier:     notifier,
		txManager:    txManager,
		locker:       locker,
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

// Execute промоутит первого в очереди студента слота
// Возвращает (nil, nil), если очередь слота пуста
func (uc *UseCase) Execute(ctx context.Context, slotID int64) (*domain.Booking, error) {
	uc.locker.Lock(slotID)
	defer uc.locker.Unlock(slotID)

	slot, err := uc.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("PromoteNext: slot id=%d not found", slotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("PromoteNext: failed to get slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	var promoted *domain.Booking
	var entry *domain.WaitlistEntry

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Пересчет занятости внутри транзакции: промоушен без свободного
		// места невозможен, очередь остается нетронутой
		count, err := uc.bookingRepo.CountSeatOccupying(txCtx, slotID)
		if err != nil {
			uc.logger.Error("PromoteNext: failed to count bookings for slot=%d: %v", slotID, err)
			return fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}

		if !slot.HasFreeSeat(count) {
			uc.logger.Warn("PromoteNext: slot=%d has no free seats, %d/%d taken", slotID, count, slot.Capacity)
			return ErrCapacityExceeded
		}

		entry, err = uc.queue.PopNext(txCtx, slotID)
		if err != nil {
			uc.logger.Error("PromoteNext: failed to pop waitlist head for slot=%d: %v", slotID, err)
			return fmt.Errorf("%w: failed to pop waitlist head: %v", ErrInternal, err)
		}
		if entry == nil {
			return nil
		}

		booking := &domain.Booking{
			StudentID: entry.StudentID,
			SlotID:    slotID,
			Status:    domain.StatusConfirmed,
		}

		promoted, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("PromoteNext: failed to create booking for student=%d slot=%d: %v",
				entry.StudentID, slotID, err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if entry == nil {
		uc.logger.Info("PromoteNext: waitlist for slot=%d is empty, nothing to promote", slotID)
		return nil, nil
	}

	uc.metrics.IncPromotion()
	uc.logger.Info("PromoteNext: promoted student=%d to booking id=%d for slot=%d",
		promoted.StudentID, promoted.ID, slotID)

	// Потеря уведомления не откатывает промоушен
	if err := uc.notifier.NotifyWithGracefulDegradation(ctx, promoted.StudentID, domain.NotificationPromoted, map[string]string{
		"slot_id":    strconv.FormatInt(slotID, 10),
		"booking_id": strconv.FormatInt(promoted.ID, 10),
	}); err != nil {
		uc.metrics.IncNotificationFailure()
	}

	return promoted, nil
}
