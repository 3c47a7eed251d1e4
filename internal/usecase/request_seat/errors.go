package request_seat

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("request_seat: slot not found")

	// ErrSlotInPast возвращается, когда временное окно слота уже началось
	ErrSlotInPast = errors.New("request_seat: slot is in the past")

	// ErrAlreadyBooked возвращается, когда у студента уже есть активное бронирование слота
	ErrAlreadyBooked = errors.New("request_seat: student already has an active booking for this slot")

	// ErrAlreadyWaitlisted возвращается, когда у студента уже есть активная запись на слот
	ErrAlreadyWaitlisted = errors.New("request_seat: student is already waitlisted for this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("request_seat: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("request_seat: internal error")

	// errSlotFull внутренняя ошибка для перехода из фазы бронирования в фазу листа ожидания
	errSlotFull = errors.New("request_seat: slot is full")
)
