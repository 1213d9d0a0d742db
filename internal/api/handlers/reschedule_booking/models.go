package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/reschedule_booking"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewStartAt time.Time `json:"newStartAt" validate:"required"` // RFC3339
	Reason     *string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RescheduleResponse HTTP response model
// remainingReschedules = -1 для администратора (без ограничения)
type RescheduleResponse struct {
	Booking              *models.BookingResponse `json:"booking"`
	PreviousStartAt      time.Time               `json:"previousStartAt"`
	RemainingReschedules int                     `json:"remainingReschedules"`
}

func (r *RescheduleRequest) ToUseCaseRequest(bookingID int64, actor domain.Actor) *rescheduleBooking.Request {
	return &rescheduleBooking.Request{
		BookingID:  bookingID,
		NewStartAt: r.NewStartAt,
		Actor:      actor,
		Reason:     r.Reason,
	}
}

func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleResponse {
	return &RescheduleResponse{
		Booking:              models.FromDomainBooking(resp.Booking),
		PreviousStartAt:      resp.PreviousAt,
		RemainingReschedules: resp.Remaining,
	}
}
