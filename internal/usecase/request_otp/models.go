package request_otp

import "time"

// Request модель запроса одноразового кода
type Request struct {
	Phone string // Телефон в формате E.164
}

// Response модель ответа на запрос кода
// При отказе по лимиту ResetTime используется для заголовка Retry-After
type Response struct {
	Remaining int
	ResetTime time.Time
}
