package get_slot_waitlist

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-EnrollmentService/internal/api/handlers"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
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

// Handle GET /api/v1/slots/{slotId}/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slotIDStr := vars["slotId"]

	slotID, err := strconv.ParseInt(slotIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /slots/{id}/waitlist - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	entries, err := h.service.ListForSlot(r.Context(), slotID)
	if err != nil {
		h.logger.Error("GET /slots/{id}/waitlist - Failed to list waitlist: slot_id=%d, error=%v", slotID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /slots/{id}/waitlist - Retrieved %d entries: slot_id=%d", len(entries), slotID)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(entries))
}
