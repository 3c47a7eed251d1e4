package get_student_waitlist

import (
	"context"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

type WaitlistService interface {
	ListForStudent(ctx context.Context, studentID int64) ([]*domain.WaitlistEntry, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
