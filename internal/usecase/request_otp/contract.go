package request_otp

import (
	"context"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// RateLimiter интерфейс лимитера с фиксированным окном
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*domain.RateLimitDecision, error)
}

// OTPSender интерфейс для отправки одноразовых кодов
type OTPSender interface {
	SendOTP(ctx context.Context, phone string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
