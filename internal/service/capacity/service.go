package capacity

import (
	"context"
	"errors"
	"fmt"

	slotRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
)

// Service отвечает на вопрос "есть ли в слоте свободное место"
// Только чтение, без побочных эффектов
type Service struct {
	slotRepo    SlotRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр capacity ledger
func NewService(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// HasCapacity возвращает true, если confirmedCount(slot) < capacity(slot)
// Для несуществующего слота возвращает false (fail closed)
func (s *Service) HasCapacity(ctx context.Context, slotID int64) (bool, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("HasCapacity: slot id=%d not found, failing closed", slotID)
			return false, nil
		}
		s.logger.Error("HasCapacity: repository error for slot id=%d: %v", slotID, err)
		return false, fmt.Errorf("%w: HasCapacity - slot repository error: %v", ErrInternal, err)
	}

	confirmedCount, err := s.bookingRepo.CountSeatOccupying(ctx, slotID)
	if err != nil {
		s.logger.Error("HasCapacity: failed to count bookings for slot id=%d: %v", slotID, err)
		return false, fmt.Errorf("%w: HasCapacity - booking repository error: %v", ErrInternal, err)
	}

	return slot.HasFreeSeat(confirmedCount), nil
}
