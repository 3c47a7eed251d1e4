package ratelimit

import "errors"

var (
	// ErrRateLimited возвращается, когда лимит запросов в текущем окне исчерпан
	ErrRateLimited = errors.New("ratelimit: too many requests")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("ratelimit: internal error")
)
