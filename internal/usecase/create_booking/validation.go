package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/slotgen"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startAt is required", ErrInvalidInput)
	}

	if !req.Actor.Role.IsValid() {
		return fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.Actor.Role)
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateActor клиент бронирует только для себя, мастер только к себе, администратор для любого
func validateActor(req *Request) error {
	switch req.Actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleClient:
		if req.Actor.ID == req.ClientID {
			return nil
		}
	case domain.RoleProvider:
		if req.Actor.ID == req.ProviderID {
			return nil
		}
	}
	return ErrAccessDenied
}

// validateHorizon проверяет, что день брони не дальше горизонта от сегодняшнего дня мастера
func validateHorizon(startAt, now time.Time, loc *time.Location, horizonDays int) error {
	if horizonDays <= 0 {
		return nil
	}
	today, _ := slotgen.DayBounds(now, loc)
	day, _ := slotgen.DayBounds(startAt, loc)
	if !day.Before(today.AddDate(0, 0, horizonDays)) {
		return ErrDateTooFarInFuture
	}
	return nil
}

// validateSlot проверяет, что начало совпадает со слотом сетки дня и слот не отсечён lead time или перерывом
func validateSlot(slots []domain.Slot, startAt, now time.Time, leadTime time.Duration) error {
	slot, ok := slotgen.Find(slots, startAt)
	if !ok {
		return ErrInvalidTimeSlot
	}
	if slot.Available {
		return nil
	}
	if startAt.Before(now.Add(leadTime)) {
		return ErrTooLateToBook
	}
	return ErrInvalidTimeSlot
}
