package request_seat

import (
	"context"

	requestSeatUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_seat"
)

type RequestSeatUseCase interface {
	Execute(ctx context.Context, req *requestSeatUC.Request) (*requestSeatUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
