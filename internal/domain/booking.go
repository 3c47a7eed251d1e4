package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a student's confirmed seat in a slot
type Booking struct {
	ID        int64
	StudentID int64
	SlotID    int64
	Status    BookingStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSeat returns true if the booking counts against slot capacity
func (b *Booking) OccupiesSeat() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCompleted
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// SeatOccupyingStatuses список статусов, занимающих место в слоте
// Используется при подсчете confirmedCount слота
var SeatOccupyingStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
}
