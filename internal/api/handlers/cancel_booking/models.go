package cancel_booking

import (
	cancelBookingUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// CancelBookingResponse HTTP response model
// Поля promoted* заполнены, если освободившееся место отдано первому в очереди
type CancelBookingResponse struct {
	BookingID         int64  `json:"bookingId"`
	Status            string `json:"status"`
	PromotedStudentID *int64 `json:"promotedStudentId,omitempty"`
	PromotedBookingID *int64 `json:"promotedBookingId,omitempty"`
}

// FromUseCaseResponse конвертирует ответ usecase в HTTP модель
func FromUseCaseResponse(resp *cancelBookingUC.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:         resp.BookingID,
		Status:            resp.Status,
		PromotedStudentID: resp.PromotedStudentID,
		PromotedBookingID: resp.PromotedBookingID,
	}
}
