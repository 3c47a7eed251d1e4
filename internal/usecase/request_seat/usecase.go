package request_seat

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
	waitlistRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/waitlist"
	waitlistService "github.com/m04kA/SMC-EnrollmentService/internal/service/waitlist"
)

// UseCase use case запроса места в слоте
//
// Admission-решение принимается атомарно: пока место проверяется и
// бронирование создается, очередь и занятость слота не могут измениться
// (per-slot блокировка + сериализуемая транзакция с FOR UPDATE)
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	waitlistRepo WaitlistRepository
	waitlistSvc  WaitlistService
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
	waitlistRepo WaitlistRepository,
	waitlistSvc WaitlistService,
	notifier Notifier,
	txManager TransactionManager,
	locker SlotLocker,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		waitlistRepo: waitlistRepo,
		waitlistSvc:  waitlistSvc,
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

// Execute выполняет use case запроса места
//
// При свободном месте создает бронирование со статусом confirmed,
// при заполненном слоте ставит студента в лист ожидания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RequestSeat: student=%d, slot=%d", req.StudentID, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RequestSeat: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем слот и проверяем, что запись ещё открыта
	slot, err := uc.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("RequestSeat: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("RequestSeat: failed to get slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	if slot.IsInPast(now) {
		uc.logger.Warn("RequestSeat: slot id=%d is in the past", req.SlotID)
		return nil, ErrSlotInPast
	}

	// 3. Фаза бронирования под per-slot блокировкой
	// Блокировку отпускаем до Enqueue: сервис листа ожидания берет её сам
	booking, err := uc.tryBookSeat(ctx, slot, req)
	if err == nil {
		uc.metrics.IncSeatConfirmed()
		uc.logger.Info("RequestSeat: confirmed booking id=%d for student=%d slot=%d",
			booking.ID, req.StudentID, req.SlotID)

		return &Response{
			Outcome: OutcomeConfirmed,
			Booking: &BookingResult{
				ID:        booking.ID,
				StudentID: booking.StudentID,
				SlotID:    booking.SlotID,
				Status:    string(booking.Status),
				CreatedAt: booking.CreatedAt,
			},
		}, nil
	}

	if !errors.Is(err, errSlotFull) {
		return nil, err
	}

	// 4. Мест нет - ставим студента в лист ожидания
	entry, err := uc.waitlistSvc.Enqueue(ctx, req.StudentID, req.SlotID)
	if err != nil {
		switch {
		case errors.Is(err, waitlistService.ErrAlreadyWaitlisted):
			return nil, ErrAlreadyWaitlisted
		case errors.Is(err, waitlistService.ErrAlreadyBooked):
			return nil, ErrAlreadyBooked
		case errors.Is(err, waitlistService.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, waitlistService.ErrSlotInPast):
			return nil, ErrSlotInPast
		default:
			uc.logger.Error("RequestSeat: failed to enqueue student=%d slot=%d: %v",
				req.StudentID, req.SlotID, err)
			return nil, fmt.Errorf("%w: failed to enqueue: %v", ErrInternal, err)
		}
	}

	uc.metrics.IncStudentWaitlisted()

	// Потеря уведомления не откатывает постановку в очередь
	if err := uc.notifier.NotifyWithGracefulDegradation(ctx, req.StudentID, domain.NotificationWaitlisted, map[string]string{
		"slot_id":  strconv.FormatInt(req.SlotID, 10),
		"priority": strconv.Itoa(entry.Priority),
	}); err != nil {
		uc.metrics.IncNotificationFailure()
	}

	uc.logger.Info("RequestSeat: student=%d waitlisted for slot=%d with priority=%d",
		req.StudentID, req.SlotID, entry.Priority)

	return &Response{
		Outcome: OutcomeWaitlisted,
		WaitlistEntry: &WaitlistResult{
			ID:        entry.ID,
			StudentID: entry.StudentID,
			SlotID:    entry.SlotID,
			Priority:  entry.Priority,
			ExpiresAt: entry.ExpiresAt,
			CreatedAt: entry.CreatedAt,
		},
	}, nil
}

// tryBookSeat пытается создать бронирование при наличии свободного места
// Возвращает errSlotFull, если все места слота заняты
func (uc *UseCase) tryBookSeat(ctx context.Context, slot *domain.Slot, req *Request) (*domain.Booking, error) {
	uc.locker.Lock(req.SlotID)
	defer uc.locker.Unlock(req.SlotID)

	now := uc.timeProvider.Now()

	// Активная запись в листе ожидания не сосуществует с бронированием:
	// студент сначала выходит из очереди (или его промоутит отмена)
	_, err := uc.waitlistRepo.GetActiveByStudentAndSlot(ctx, req.StudentID, req.SlotID, now)
	if err == nil {
		uc.logger.Warn("RequestSeat: student=%d is already waitlisted for slot=%d", req.StudentID, req.SlotID)
		return nil, ErrAlreadyWaitlisted
	}
	if !errors.Is(err, waitlistRepo.ErrEntryNotFound) {
		uc.logger.Error("RequestSeat: failed to check waitlist for student=%d slot=%d: %v",
			req.StudentID, req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to check waitlist: %v", ErrInternal, err)
	}

	var created *domain.Booking

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Подсчет занятых мест с блокировкой строк (FOR UPDATE)
		count, err := uc.bookingRepo.CountSeatOccupying(txCtx, req.SlotID)
		if err != nil {
			uc.logger.Error("RequestSeat: failed to count bookings for slot=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}

		booked, err := uc.bookingRepo.HasSeatOccupying(txCtx, req.StudentID, req.SlotID)
		if err != nil {
			uc.logger.Error("RequestSeat: failed to check booking for student=%d slot=%d: %v",
				req.StudentID, req.SlotID, err)
			return fmt.Errorf("%w: failed to check booking: %v", ErrInternal, err)
		}
		if booked {
			uc.logger.Warn("RequestSeat: student=%d already has an active booking for slot=%d",
				req.StudentID, req.SlotID)
			return ErrAlreadyBooked
		}

		if !slot.HasFreeSeat(count) {
			uc.logger.Info("RequestSeat: slot=%d is full, %d/%d seats taken", req.SlotID, count, slot.Capacity)
			return errSlotFull
		}

		booking := &domain.Booking{
			StudentID: req.StudentID,
			SlotID:    req.SlotID,
			Status:    domain.StatusConfirmed,
		}

		created, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("RequestSeat: failed to create booking for student=%d slot=%d: %v",
				req.StudentID, req.SlotID, err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}
