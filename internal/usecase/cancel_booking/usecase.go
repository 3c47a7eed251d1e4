package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-EnrollmentService/internal/usecase/promote_next"
	"github.com/m04kA/SMC-EnrollmentService/pkg/ptr"
)

const defaultCancellationReason = "cancelled by student"

// UseCase use case отмены бронирования с автоматическим промоушеном
//
// Отмена и промоушен выполняются раздельно: сбой промоушена
// (включая перехват места конкурентным запросом) не откатывает отмену
type UseCase struct {
	bookingRepo  BookingRepository
	promoter     Promoter
	txManager    TransactionManager
	locker       SlotLocker
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	promoter Promoter,
	txManager TransactionManager,
	locker SlotLocker,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		promoter:     promoter,
		txManager:    txManager,
		locker:       locker,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: student=%d, booking=%d", req.StudentID, req.BookingID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.StudentID != req.StudentID {
		uc.logger.Warn("CancelBooking: booking id=%d belongs to student=%d, requested by student=%d",
			req.BookingID, booking.StudentID, req.StudentID)
		return nil, ErrForbidden
	}

	if err := uc.cancel(ctx, booking, req); err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: cancelled booking id=%d, slot=%d", booking.ID, booking.SlotID)

	response := &Response{
		BookingID: booking.ID,
		Status:    string(domain.StatusCancelled),
	}

	// Освободившееся место отдаем первому в очереди
	// Promoter берет per-slot блокировку сам
	promoted, err := uc.promoter.Execute(ctx, booking.SlotID)
	if err != nil {
		if errors.Is(err, promote_next.ErrCapacityExceeded) {
			// Место успели занять до промоушена, очередь не тронута
			uc.logger.Info("CancelBooking: freed seat in slot=%d was taken before promotion", booking.SlotID)
			return response, nil
		}
		// Отмена уже состоялась, сбой промоушена не считаем ошибкой операции
		uc.logger.Error("CancelBooking: promotion failed for slot=%d: %v", booking.SlotID, err)
		return response, nil
	}

	if promoted != nil {
		response.PromotedStudentID = ptr.Ptr(promoted.StudentID)
		response.PromotedBookingID = ptr.Ptr(promoted.ID)
	}

	return response, nil
}

// cancel отменяет бронирование под per-slot блокировкой
// Статус перепроверяется внутри транзакции: конкурентная отмена того же
// бронирования завершится ErrAlreadyCancelled, а не повторным промоушеном
func (uc *UseCase) cancel(ctx context.Context, booking *domain.Booking, req *Request) error {
	uc.locker.Lock(booking.SlotID)
	defer uc.locker.Unlock(booking.SlotID)

	reason := defaultCancellationReason
	if req.Reason != nil && *req.Reason != "" {
		reason = *req.Reason
	}

	return uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to reload booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to reload booking: %v", ErrInternal, err)
		}

		if current.IsCancelled() {
			uc.logger.Warn("CancelBooking: booking id=%d is already cancelled", req.BookingID)
			return ErrAlreadyCancelled
		}

		if !current.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: booking id=%d in status=%s cannot be cancelled",
				req.BookingID, current.Status)
			return ErrNotCancellable
		}

		if err := uc.bookingRepo.Cancel(txCtx, req.BookingID, reason); err != nil {
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		return nil
	})
}
