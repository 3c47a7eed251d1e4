package cancel_booking

import (
	"context"

	cancelBookingUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/cancel_booking"
)

type CancelBookingUseCase interface {
	Execute(ctx context.Context, req *cancelBookingUC.Request) (*cancelBookingUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
