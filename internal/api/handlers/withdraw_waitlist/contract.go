package withdraw_waitlist

import "context"

type WaitlistService interface {
	Leave(ctx context.Context, studentID, slotID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
