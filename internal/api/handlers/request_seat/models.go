package request_seat

import (
	"time"

	requestSeatUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_seat"
)

// RequestSeatRequest HTTP request model
type RequestSeatRequest struct {
	SlotID int64 `json:"slotId"`
}

// BookingResponse созданное бронирование
type BookingResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	SlotID    int64     `json:"slotId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// WaitlistEntryResponse созданная запись листа ожидания
type WaitlistEntryResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	SlotID    int64     `json:"slotId"`
	Priority  int       `json:"priority"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// RequestSeatResponse HTTP response model
// Заполнено ровно одно из полей booking / waitlistEntry
type RequestSeatResponse struct {
	Outcome       string                 `json:"outcome"`
	Booking       *BookingResponse       `json:"booking,omitempty"`
	WaitlistEntry *WaitlistEntryResponse `json:"waitlistEntry,omitempty"`
}

// FromUseCaseResponse конвертирует ответ usecase в HTTP модель
func FromUseCaseResponse(resp *requestSeatUC.Response) *RequestSeatResponse {
	result := &RequestSeatResponse{Outcome: resp.Outcome}

	if resp.Booking != nil {
		result.Booking = &BookingResponse{
			ID:        resp.Booking.ID,
			StudentID: resp.Booking.StudentID,
			SlotID:    resp.Booking.SlotID,
			Status:    resp.Booking.Status,
			CreatedAt: resp.Booking.CreatedAt,
		}
	}

	if resp.WaitlistEntry != nil {
		result.WaitlistEntry = &WaitlistEntryResponse{
			ID:        resp.WaitlistEntry.ID,
			StudentID: resp.WaitlistEntry.StudentID,
			SlotID:    resp.WaitlistEntry.SlotID,
			Priority:  resp.WaitlistEntry.Priority,
			ExpiresAt: resp.WaitlistEntry.ExpiresAt,
			CreatedAt: resp.WaitlistEntry.CreatedAt,
		}
	}

	return result
}
