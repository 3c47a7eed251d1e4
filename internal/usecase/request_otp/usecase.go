package request_otp

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-EnrollmentService/internal/service/ratelimit"
)

// UseCase use case запроса одноразового кода подтверждения
//
// Лимит считается по телефону: окно фиксируется первым запросом,
// отказы внутри окна не отодвигают время сброса
type UseCase struct {
	limiter   RateLimiter
	otpSender OTPSender
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(limiter RateLimiter, otpSender OTPSender, logger Logger) *UseCase {
	return &UseCase{
		limiter:   limiter,
		otpSender: otpSender,
		logger:    logger,
	}
}

// Execute выполняет use case запроса кода
// При исчерпании лимита возвращает ErrRateLimited вместе с ответом,
// содержащим время сброса окна
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RequestOTP: validation failed: %v", err)
		return nil, err
	}

	decision, err := uc.limiter.Allow(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, ratelimit.ErrRateLimited) {
			uc.logger.Warn("RequestOTP: phone=%s rate limited until %s",
				req.Phone, decision.ResetTime.Format("15:04:05"))
			return &Response{
				Remaining: decision.Remaining,
				ResetTime: decision.ResetTime,
			}, ErrRateLimited
		}
		uc.logger.Error("RequestOTP: rate limiter error for phone=%s: %v", req.Phone, err)
		return nil, fmt.Errorf("%w: rate limiter error: %v", ErrInternal, err)
	}

	if err := uc.otpSender.SendOTP(ctx, req.Phone); err != nil {
		// Попытка уже потрачена: повторный запрос расходует лимит заново
		uc.logger.Error("RequestOTP: failed to send otp to phone=%s: %v", req.Phone, err)
		return nil, fmt.Errorf("%w: failed to send otp: %v", ErrInternal, err)
	}

	uc.logger.Info("RequestOTP: otp sent to phone=%s, %d requests remaining in window", req.Phone, decision.Remaining)

	return &Response{
		Remaining: decision.Remaining,
		ResetTime: decision.ResetTime,
	}, nil
}
