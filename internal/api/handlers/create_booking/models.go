package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
// clientId можно не указывать: клиент бронирует на себя
type CreateBookingRequest struct {
	ProviderID int64     `json:"providerId" validate:"required,gt=0"`
	ServiceID  int64     `json:"serviceId" validate:"required,gt=0"`
	ClientID   int64     `json:"clientId,omitempty" validate:"gte=0"`
	StartAt    time.Time `json:"startAt" validate:"required"` // RFC3339, например "2025-10-15T10:00:00+03:00"
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor) *createBooking.Request {
	clientID := r.ClientID
	if clientID == 0 && actor.Role == domain.RoleClient {
		clientID = actor.ID
	}

	return &createBooking.Request{
		Actor:      actor,
		ProviderID: r.ProviderID,
		ServiceID:  r.ServiceID,
		ClientID:   clientID,
		StartAt:    r.StartAt,
		Notes:      r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingResponse {
	return models.FromDomainBooking(resp.Booking)
}
