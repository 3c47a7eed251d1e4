package cancel_booking

// Request модель запроса на отмену бронирования
type Request struct {
	StudentID int64   // ID студента (из заголовка аутентификации)
	BookingID int64   // ID бронирования
	Reason    *string // Причина отмены (опционально)
}

// Response модель ответа на отмену бронирования
type Response struct {
	BookingID int64
	Status    string

	// Результат автоматического промоушена освободившегося места
	PromotedStudentID *int64
	PromotedBookingID *int64
}
