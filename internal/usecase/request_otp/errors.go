package request_otp

import "errors"

var (
	// ErrRateLimited возвращается, когда лимит запросов кода в текущем окне исчерпан
	ErrRateLimited = errors.New("request_otp: too many requests")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_otp: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_otp: internal error")
)
