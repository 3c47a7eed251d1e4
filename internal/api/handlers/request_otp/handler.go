package request_otp

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/api/handlers"
	requestOTPUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_otp"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPhone       = "некорректный номер телефона"
	msgTooManyRequests    = "слишком много запросов кода, попробуйте позже"
)

type Handler struct {
	useCase RequestOTPUseCase
	logger  Logger
}

func NewHandler(useCase RequestOTPUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/otp/request
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req RequestOTPRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /otp/request - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &requestOTPUC.Request{
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, requestOTPUC.ErrRateLimited):
			retryAfter := int(time.Until(resp.ResetTime).Seconds()) + 1
			h.logger.Warn("POST /otp/request - Rate limited, retry after %ds", retryAfter)
			handlers.RespondTooManyRequests(w, retryAfter, msgTooManyRequests)

		case errors.Is(err, requestOTPUC.ErrInvalidInput):
			h.logger.Warn("POST /otp/request - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPhone)

		default:
			h.logger.Error("POST /otp/request - Failed to request otp: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /otp/request - OTP sent, %d requests remaining", resp.Remaining)
	handlers.RespondJSON(w, http.StatusOK, &RequestOTPResponse{
		Remaining: resp.Remaining,
		ResetTime: resp.ResetTime,
	})
}
