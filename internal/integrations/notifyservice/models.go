package notifyservice

// NotificationRequest запрос на отправку уведомления студенту
type NotificationRequest struct {
	StudentID int64             `json:"student_id"`
	Kind      string            `json:"kind"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// OTPRequest запрос на отправку одноразового кода на телефон
type OTPRequest struct {
	Phone string `json:"phone"`
}

// ErrorResponse модель ошибки от NotifyService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
