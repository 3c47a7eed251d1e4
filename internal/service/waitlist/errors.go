package waitlist

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("waitlist: slot not found")

	// ErrSlotInPast возвращается, когда временное окно слота уже началось
	ErrSlotInPast = errors.New("waitlist: slot is in the past")

	// ErrAlreadyWaitlisted возвращается, когда у студента уже есть активная запись на слот
	ErrAlreadyWaitlisted = errors.New("waitlist: student is already waitlisted for this slot")

	// ErrAlreadyBooked возвращается, когда у студента уже есть активное бронирование слота
	ErrAlreadyBooked = errors.New("waitlist: student already has an active booking for this slot")

	// ErrNotWaitlisted возвращается, когда активной записи студента на слот нет
	ErrNotWaitlisted = errors.New("waitlist: student is not waitlisted for this slot")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("waitlist: internal error")
)
