package schedule

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
)

// canManage мастер управляет своим расписанием, администратор любым
func canManage(actor domain.Actor, providerID int64) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleProvider:
		return actor.ID == providerID
	}
	return false
}

// validateDay проверяет рабочие часы дня
// Рабочий день требует start < end, перерыв должен лежать внутри окна и задаваться целиком
func validateDay(req *models.UpsertDayRequest) error {
	if req.DayOfWeek < time.Sunday || req.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week must be in 0..6", ErrInvalidInput)
	}
	if !req.IsWorking {
		return nil
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidSchedule, err)
	}
	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: end time: %v", ErrInvalidSchedule, err)
	}
	if !req.StartTime.IsBefore(req.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidSchedule)
	}

	if (req.BreakStart == nil) != (req.BreakEnd == nil) {
		return fmt.Errorf("%w: break must have both start and end", ErrInvalidSchedule)
	}
	if req.BreakStart == nil {
		return nil
	}

	if err := req.BreakStart.Validate(); err != nil {
		return fmt.Errorf("%w: break start: %v", ErrInvalidSchedule, err)
	}
	if err := req.BreakEnd.Validate(); err != nil {
		return fmt.Errorf("%w: break end: %v", ErrInvalidSchedule, err)
	}
	if !req.BreakStart.IsBefore(*req.BreakEnd) {
		return fmt.Errorf("%w: break start must be before break end", ErrInvalidSchedule)
	}
	if req.BreakStart.IsBefore(req.StartTime) || req.BreakEnd.IsAfter(req.EndTime) {
		return fmt.Errorf("%w: break must be inside working hours", ErrInvalidSchedule)
	}

	return nil
}

// validateBlock проверяет интервал блокировки
func validateBlock(req *models.BlockRequest) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}
	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxBlockReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxBlockReasonLength)
	}
	return nil
}
