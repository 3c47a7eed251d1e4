package request_otp

import (
	"context"

	requestOTPUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_otp"
)

type RequestOTPUseCase interface {
	Execute(ctx context.Context, req *requestOTPUC.Request) (*requestOTPUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
