package get_slot_waitlist

import (
	"context"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

type WaitlistService interface {
	ListForSlot(ctx context.Context, slotID int64) ([]*domain.WaitlistEntry, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
