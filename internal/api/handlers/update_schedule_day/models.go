package update_schedule_day

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// UpdateDayRequest HTTP request model
// Для рабочего дня обязательны startTime и endTime в формате HH:MM
type UpdateDayRequest struct {
	IsWorking  bool              `json:"isWorking"`
	StartTime  types.TimeString  `json:"startTime" validate:"required_if=IsWorking true"`
	EndTime    types.TimeString  `json:"endTime" validate:"required_if=IsWorking true"`
	BreakStart *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd   *types.TimeString `json:"breakEnd,omitempty"`
}

func (r *UpdateDayRequest) ToServiceRequest(actor domain.Actor, providerID int64, day time.Weekday) *models.UpsertDayRequest {
	return &models.UpsertDayRequest{
		Actor:      actor,
		ProviderID: providerID,
		DayOfWeek:  day,
		IsWorking:  r.IsWorking,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		BreakStart: r.BreakStart,
		BreakEnd:   r.BreakEnd,
	}
}
