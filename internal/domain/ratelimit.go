package domain

import "time"

// RateLimitWindow represents a fixed counting window for one key (phone number)
// Created lazily on first request, reset when the window rolls over
type RateLimitWindow struct {
	Count     int
	ResetTime time.Time
}

// IsExpired returns true if the window has rolled over
func (w *RateLimitWindow) IsExpired(now time.Time) bool {
	return now.After(w.ResetTime)
}

// RateLimitDecision is the outcome of a single rate-limit check
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}
