package get_slot_waitlist

import (
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// WaitlistEntryResponse запись листа ожидания
type WaitlistEntryResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	SlotID    int64     `json:"slotId"`
	Priority  int       `json:"priority"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// WaitlistResponse список записей листа ожидания слота
type WaitlistResponse struct {
	Entries []WaitlistEntryResponse `json:"entries"`
}

// FromDomain конвертирует доменные записи в HTTP модель
func FromDomain(entries []*domain.WaitlistEntry) *WaitlistResponse {
	resp := &WaitlistResponse{
		Entries: make([]WaitlistEntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		resp.Entries = append(resp.Entries, WaitlistEntryResponse{
			ID:        entry.ID,
			StudentID: entry.StudentID,
			SlotID:    entry.SlotID,
			Priority:  entry.Priority,
			ExpiresAt: entry.ExpiresAt,
			CreatedAt: entry.CreatedAt,
		})
	}

	return resp
}
