package update_schedule_day

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertDay(ctx context.Context, req *models.UpsertDayRequest) (*models.DayResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
