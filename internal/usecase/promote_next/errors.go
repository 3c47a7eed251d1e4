package promote_next

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("promote_next: slot not found")

	// ErrCapacityExceeded возвращается, когда промоушен запрошен для заполненного слота
	// Очередь при этом остается нетронутой
	ErrCapacityExceeded = errors.New("promote_next: slot capacity exceeded")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("promote_next: internal error")
)
