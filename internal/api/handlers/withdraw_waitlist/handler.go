package withdraw_waitlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-EnrollmentService/internal/api/handlers"
	"github.com/m04kA/SMC-EnrollmentService/internal/api/middleware"
	waitlistService "github.com/m04kA/SMC-EnrollmentService/internal/service/waitlist"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotWaitlisted = "студент не состоит в листе ожидания этого слота"
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

// Handle POST /api/v1/slots/{slotId}/waitlist/withdraw
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slotIDStr := vars["slotId"]

	slotID, err := strconv.ParseInt(slotIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /slots/{id}/waitlist/withdraw - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/waitlist/withdraw - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err = h.service.Leave(r.Context(), studentID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, waitlistService.ErrNotWaitlisted):
			h.logger.Warn("POST /slots/{id}/waitlist/withdraw - Not waitlisted: student_id=%d, slot_id=%d",
				studentID, slotID)
			handlers.RespondNotFound(w, msgNotWaitlisted)

		default:
			h.logger.Error("POST /slots/{id}/waitlist/withdraw - Failed to leave waitlist: student_id=%d, slot_id=%d, error=%v",
				studentID, slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/waitlist/withdraw - Student left waitlist: student_id=%d, slot_id=%d",
		studentID, slotID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
