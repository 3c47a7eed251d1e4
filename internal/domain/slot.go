package domain

import (
	"time"

	"github.com/m04kA/SMC-EnrollmentService/pkg/types"
)

// Slot represents a finite-capacity bookable time window
// Slot lifecycle is owned by an external service; this service
// only reads capacity and the time window for admission decisions
type Slot struct {
	ID              int64
	BranchID        int64
	TeacherID       *int64
	SlotDate        time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Capacity        int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartsAt returns the absolute start of the slot's time window
func (s *Slot) StartsAt() (time.Time, error) {
	return s.StartTime.OnDate(s.SlotDate)
}

// IsInPast returns true if the slot's time window has already begun
func (s *Slot) IsInPast(now time.Time) bool {
	startsAt, err := s.StartsAt()
	if err != nil {
		// Некорректное время трактуем как прошедший слот: запись закрыта
		return true
	}
	return !startsAt.After(now)
}

// HasFreeSeat returns true if confirmedCount leaves at least one seat free
func (s *Slot) HasFreeSeat(confirmedCount int) bool {
	return confirmedCount < s.Capacity
}
