package get_schedule

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetWeek(ctx context.Context, providerID int64) (*models.WeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
