package transition_booking

import (
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
	transitionBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/transition_booking"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled no_show"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// TransitionResponse HTTP response model: бронирование после перехода и выполненные эффекты
type TransitionResponse struct {
	Booking         *models.BookingResponse `json:"booking"`
	From            string                  `json:"from"`
	Effects         []string                `json:"effects"`
	CancellationFee float64                 `json:"cancellation_fee,omitempty"`
}

func (r *TransitionRequest) ToUseCaseRequest(bookingID int64, actor domain.Actor) *transitionBooking.Request {
	return &transitionBooking.Request{
		BookingID: bookingID,
		Target:    domain.BookingStatus(r.Status),
		Actor:     actor,
		Reason:    r.Reason,
	}
}

func FromUseCaseResponse(resp *transitionBooking.Response) *TransitionResponse {
	out := &TransitionResponse{
		Booking: models.FromDomainBooking(resp.Booking),
		From:    string(resp.From),
		Effects: make([]string, 0, len(resp.Effects)),

		CancellationFee: resp.CancellationFee,
	}
	for _, e := range resp.Effects {
		out.Effects = append(out.Effects, string(e))
	}
	return out
}
