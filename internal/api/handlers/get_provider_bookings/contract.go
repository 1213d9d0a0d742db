package get_provider_bookings

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
