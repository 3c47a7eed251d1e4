package domain

import "time"

// WaitlistEntry represents a student's position in line for a full slot
// Priority 1 is next in line; priorities of non-expired entries for a slot
// always form a contiguous sequence 1..N in arrival order
type WaitlistEntry struct {
	ID        int64
	StudentID int64
	SlotID    int64
	Priority  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the entry's TTL has elapsed
func (e *WaitlistEntry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
