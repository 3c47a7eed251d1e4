package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	slotRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
	waitlistRepository "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/waitlist"
)

// Service сервис листа ожидания
//
// Все мутации очереди одного слота сериализуются через SlotLocker:
// Enqueue, Leave и RemoveExpired берут блокировку сами, PopNext
// рассчитывает на блокировку вызывающей стороны (admission flow
// держит её на протяжении всей последовательности
// "проверка мест - pop - создание бронирования")
type Service struct {
	waitlistRepo WaitlistRepository
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	ledger       CapacityLedger
	locker       SlotLocker
	ttl          time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса листа ожидания
func NewService(
	waitlistRepo WaitlistRepository,
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	ledger CapacityLedger,
	locker SlotLocker,
	ttl time.Duration,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo: waitlistRepo,
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		ledger:       ledger,
		locker:       locker,
		ttl:          ttl,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Enqueue ставит студента в лист ожидания слота
//
// Приоритет назначается в порядке прибытия: количество активных
// записей слота + 1. Слот не обязан быть заполненным - если места
// есть, пишем warning, но запись создаем
func (s *Service) Enqueue(ctx context.Context, studentID, slotID int64) (*domain.WaitlistEntry, error) {
	s.locker.Lock(slotID)
	defer s.locker.Unlock(slotID)

	now := s.timeProvider.Now()

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepository.ErrSlotNotFound) {
			s.logger.Warn("Enqueue: slot id=%d not found", slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Enqueue: slot repository error for slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - slot repository error: %v", ErrInternal, err)
	}

	if slot.IsInPast(now) {
		s.logger.Warn("Enqueue: slot id=%d is in the past", slotID)
		return nil, ErrSlotInPast
	}

	// Ленивая очистка просроченных записей слота: приоритеты активных
	// записей остаются непрерывными, не дожидаясь sweeper-а
	if err := s.purgeExpired(ctx, slotID, now); err != nil {
		return nil, err
	}

	// Инвариант: не более одной активной записи студента на слот
	_, err = s.waitlistRepo.GetActiveByStudentAndSlot(ctx, studentID, slotID, now)
	if err == nil {
		s.logger.Warn("Enqueue: student=%d is already waitlisted for slot=%d", studentID, slotID)
		return nil, ErrAlreadyWaitlisted
	}
	if !errors.Is(err, waitlistRepository.ErrEntryNotFound) {
		s.logger.Error("Enqueue: waitlist repository error for student=%d slot=%d: %v", studentID, slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - waitlist repository error: %v", ErrInternal, err)
	}

	// Инвариант: активная запись не сосуществует с активным бронированием
	booked, err := s.bookingRepo.HasSeatOccupying(ctx, studentID, slotID)
	if err != nil {
		s.logger.Error("Enqueue: booking repository error for student=%d slot=%d: %v", studentID, slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - booking repository error: %v", ErrInternal, err)
	}
	if booked {
		s.logger.Warn("Enqueue: student=%d already has an active booking for slot=%d", studentID, slotID)
		return nil, ErrAlreadyBooked
	}

	// Заполненность слота - ожидаемое условие для листа ожидания,
	// но не обязательное: при свободных местах только предупреждаем
	hasCapacity, err := s.ledger.HasCapacity(ctx, slotID)
	if err != nil {
		s.logger.Error("Enqueue: capacity ledger error for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - capacity ledger error: %v", ErrInternal, err)
	}
	if hasCapacity {
		s.logger.Warn("Enqueue: slot=%d still has free seats, waitlisting student=%d anyway", slotID, studentID)
	}

	count, err := s.waitlistRepo.CountActiveBySlot(ctx, slotID, now)
	if err != nil {
		s.logger.Error("Enqueue: failed to count entries for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - waitlist repository error: %v", ErrInternal, err)
	}

	entry := &domain.WaitlistEntry{
		StudentID: studentID,
		SlotID:    slotID,
		Priority:  count + 1,
		ExpiresAt: now.Add(s.ttl),
	}

	created, err := s.waitlistRepo.Create(ctx, entry)
	if err != nil {
		s.logger.Error("Enqueue: failed to create entry for student=%d slot=%d: %v", studentID, slotID, err)
		return nil, fmt.Errorf("%w: Enqueue - waitlist repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Enqueue: student=%d waitlisted for slot=%d with priority=%d", studentID, slotID, created.Priority)
	return created, nil
}

// Leave убирает студента из листа ожидания слота,
// перенумеровывая оставшиеся записи в 1..N с сохранением порядка
func (s *Service) Leave(ctx context.Context, studentID, slotID int64) error {
	s.locker.Lock(slotID)
	defer s.locker.Unlock(slotID)

	now := s.timeProvider.Now()

	if err := s.purgeExpired(ctx, slotID, now); err != nil {
		return err
	}

	entry, err := s.waitlistRepo.GetActiveByStudentAndSlot(ctx, studentID, slotID, now)
	if err != nil {
		if errors.Is(err, waitlistRepository.ErrEntryNotFound) {
			s.logger.Warn("Leave: no active entry for student=%d slot=%d", studentID, slotID)
			return ErrNotWaitlisted
		}
		s.logger.Error("Leave: waitlist repository error for student=%d slot=%d: %v", studentID, slotID, err)
		return fmt.Errorf("%w: Leave - waitlist repository error: %v", ErrInternal, err)
	}

	if err := s.removeAndShift(ctx, entry); err != nil {
		return err
	}

	s.logger.Info("Leave: student=%d left waitlist for slot=%d (was priority=%d)", studentID, slotID, entry.Priority)
	return nil
}

// ListForSlot возвращает активные записи слота по возрастанию priority
func (s *Service) ListForSlot(ctx context.Context, slotID int64) ([]*domain.WaitlistEntry, error) {
	entries, err := s.waitlistRepo.GetActiveBySlot(ctx, slotID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ListForSlot: waitlist repository error for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: ListForSlot - waitlist repository error: %v", ErrInternal, err)
	}
	return entries, nil
}

// ListForStudent возвращает активные записи студента от новых к старым
func (s *Service) ListForStudent(ctx context.Context, studentID int64) ([]*domain.WaitlistEntry, error) {
	entries, err := s.waitlistRepo.GetActiveByStudent(ctx, studentID, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ListForStudent: waitlist repository error for student=%d: %v", studentID, err)
		return nil, fmt.Errorf("%w: ListForStudent - waitlist repository error: %v", ErrInternal, err)
	}
	return entries, nil
}

// PopNext снимает и возвращает первую в очереди активную запись слота
// Возвращает (nil, nil), если очередь слота пуста
//
// Блокировку слота НЕ берет: вызывающая сторона (admission flow) держит
// её на протяжении всей операции промоушена
func (s *Service) PopNext(ctx context.Context, slotID int64) (*domain.WaitlistEntry, error) {
	now := s.timeProvider.Now()

	if err := s.purgeExpired(ctx, slotID, now); err != nil {
		return nil, err
	}

	entries, err := s.waitlistRepo.GetActiveBySlot(ctx, slotID, now)
	if err != nil {
		s.logger.Error("PopNext: waitlist repository error for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: PopNext - waitlist repository error: %v", ErrInternal, err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	head := entries[0]
	if err := s.removeAndShift(ctx, head); err != nil {
		return nil, err
	}

	s.logger.Info("PopNext: popped student=%d from slot=%d (priority=%d)", head.StudentID, head.SlotID, head.Priority)
	return head, nil
}

// RemoveExpired удаляет просроченные записи слота и возвращает их
// Используется sweeper-ом; перенумеровывает только затронутый слот
func (s *Service) RemoveExpired(ctx context.Context, slotID int64) ([]*domain.WaitlistEntry, error) {
	s.locker.Lock(slotID)
	defer s.locker.Unlock(slotID)

	now := s.timeProvider.Now()

	expired, err := s.waitlistRepo.GetExpiredBySlot(ctx, slotID, now)
	if err != nil {
		s.logger.Error("RemoveExpired: waitlist repository error for slot=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: RemoveExpired - waitlist repository error: %v", ErrInternal, err)
	}

	removed := make([]*domain.WaitlistEntry, 0, len(expired))
	for _, entry := range expired {
		if err := s.removeAndShift(ctx, entry); err != nil {
			// Частично обработанный слот не откатываем: уже удаленные
			// записи остаются удаленными, повторный sweep доберет остаток
			return removed, err
		}
		removed = append(removed, entry)
	}

	return removed, nil
}

// purgeExpired удаляет просроченные записи слота без уведомлений
// Записи идут по убыванию priority, поэтому сдвиги не затрагивают
// ещё не обработанные просроченные записи
func (s *Service) purgeExpired(ctx context.Context, slotID int64, now time.Time) error {
	expired, err := s.waitlistRepo.GetExpiredBySlot(ctx, slotID, now)
	if err != nil {
		s.logger.Error("purgeExpired: waitlist repository error for slot=%d: %v", slotID, err)
		return fmt.Errorf("%w: purgeExpired - waitlist repository error: %v", ErrInternal, err)
	}

	for _, entry := range expired {
		if err := s.removeAndShift(ctx, entry); err != nil {
			return err
		}
	}

	if len(expired) > 0 {
		s.logger.Info("purgeExpired: removed %d expired entries from slot=%d", len(expired), slotID)
	}

	return nil
}

// removeAndShift удаляет запись и компактифицирует приоритеты слота
func (s *Service) removeAndShift(ctx context.Context, entry *domain.WaitlistEntry) error {
	if err := s.waitlistRepo.Delete(ctx, entry.ID); err != nil {
		s.logger.Error("removeAndShift: failed to delete entry id=%d: %v", entry.ID, err)
		return fmt.Errorf("%w: removeAndShift - waitlist repository error: %v", ErrInternal, err)
	}

	if err := s.waitlistRepo.ShiftPrioritiesAfter(ctx, entry.SlotID, entry.Priority); err != nil {
		s.logger.Error("removeAndShift: failed to shift priorities for slot=%d: %v", entry.SlotID, err)
		return fmt.Errorf("%w: removeAndShift - waitlist repository error: %v", ErrInternal, err)
	}

	return nil
}
