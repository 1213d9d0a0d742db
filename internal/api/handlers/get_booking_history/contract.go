package get_booking_history

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetHistory(ctx context.Context, bookingID int64, actor domain.Actor) (*models.HistoryListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
