package request_seat

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EnrollmentService/internal/api/handlers"
	"github.com/m04kA/SMC-EnrollmentService/internal/api/middleware"
	requestSeatUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_seat"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotFound       = "слот не найден"
	msgSlotInPast         = "запись на прошедший слот закрыта"
	msgAlreadyBooked      = "у студента уже есть бронирование на этот слот"
	msgAlreadyWaitlisted  = "студент уже в листе ожидания этого слота"
)

type Handler struct {
	useCase RequestSeatUseCase
	logger  Logger
}

func NewHandler(useCase RequestSeatUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/seat-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /seat-requests - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RequestSeatRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /seat-requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &requestSeatUC.Request{
		StudentID: studentID,
		SlotID:    req.SlotID,
	})
	if err != nil {
		switch {
		case errors.Is(err, requestSeatUC.ErrSlotNotFound):
			h.logger.Warn("POST /seat-requests - Slot not found: slot_id=%d", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, requestSeatUC.ErrSlotInPast):
			h.logger.Warn("POST /seat-requests - Slot in past: slot_id=%d", req.SlotID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, requestSeatUC.ErrAlreadyBooked):
			h.logger.Warn("POST /seat-requests - Already booked: student_id=%d, slot_id=%d", studentID, req.SlotID)
			handlers.RespondConflict(w, msgAlreadyBooked)

		case errors.Is(err, requestSeatUC.ErrAlreadyWaitlisted):
			h.logger.Warn("POST /seat-requests - Already waitlisted: student_id=%d, slot_id=%d", studentID, req.SlotID)
			handlers.RespondConflict(w, msgAlreadyWaitlisted)

		case errors.Is(err, requestSeatUC.ErrInvalidInput):
			h.logger.Warn("POST /seat-requests - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /seat-requests - Failed to request seat: student_id=%d, slot_id=%d, error=%v",
				studentID, req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// 201 для подтвержденного бронирования, 202 для постановки в очередь
	status := http.StatusCreated
	if resp.Outcome == requestSeatUC.OutcomeWaitlisted {
		status = http.StatusAccepted
	}

	h.logger.Info("POST /seat-requests - Outcome=%s: student_id=%d, slot_id=%d", resp.Outcome, studentID, req.SlotID)
	handlers.RespondJSON(w, status, FromUseCaseResponse(resp))
}
