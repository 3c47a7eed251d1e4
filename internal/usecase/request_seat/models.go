package request_seat

import "time"

// Результат запроса места: либо подтвержденное бронирование,
// либо позиция в листе ожидания
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeWaitlisted = "waitlisted"
)

// Request модель запроса места в слоте
type Request struct {
	StudentID int64 // ID студента (из заголовка аутентификации)
	SlotID    int64 // ID слота
}

// Response модель ответа на запрос места
// Заполнено ровно одно из полей Booking / WaitlistEntry в зависимости от Outcome
type Response struct {
	Outcome       string
	Booking       *BookingResult
	WaitlistEntry *WaitlistResult
}

// BookingResult созданное бронирование
type BookingResult struct {
	ID        int64
	StudentID int64
	SlotID    int64
	Status    string
	CreatedAt time.Time
}

// WaitlistResult созданная запись листа ожидания
type WaitlistResult struct {
	ID        int64
	StudentID int64
	SlotID    int64
	Priority  int
	ExpiresAt time.Time
	CreatedAt time.Time
}
