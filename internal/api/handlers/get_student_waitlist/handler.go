package get_student_waitlist

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-EnrollmentService/internal/api/handlers"
	"github.com/m04kA/SMC-EnrollmentService/internal/api/middleware"
)

const (
	msgInvalidStudentID = "некорректный ID студента"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/students/{studentId}/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	studentIDStr := vars["studentId"]

	studentID, err := strconv.ParseInt(studentIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /students/{id}/waitlist - Invalid student ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStudentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /students/{id}/waitlist - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Студент видит только свои записи
	if userID != studentID {
		h.logger.Warn("GET /students/{id}/waitlist - Access denied: student_id=%d, user_id=%d", studentID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	entries, err := h.service.ListForStudent(r.Context(), studentID)
	if err != nil {
		h.logger.Error("GET /students/{id}/waitlist - Failed to list waitlist: student_id=%d, error=%v",
			studentID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /students/{id}/waitlist - Retrieved %d entries: student_id=%d", len(entries), studentID)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(entries))
}
