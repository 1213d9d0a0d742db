package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/slotgen"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.NewStartAt.IsZero() {
		return fmt.Errorf("%w: newStartAt is required", ErrInvalidInput)
	}

	if !req.Actor.Role.IsValid() {
		return fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.Actor.Role)
	}

	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

// remaining возвращает остаток переносов роли; -1 для администратора
func (uc *UseCase) remaining(b *domain.Booking, role domain.ActorRole) int {
	switch role {
	case domain.RoleClient:
		return uc.cfg.MaxClientReschedules - b.ClientReschedules
	case domain.RoleProvider:
		return uc.cfg.MaxProviderReschedules - b.ProviderReschedules
	}
	return -1
}

// validateBooking проверяет статус брони, время до её начала и лимит переносов
func (uc *UseCase) validateBooking(b *domain.Booking, req *Request, now time.Time) error {
	if !b.IsParticipant(req.Actor) {
		return ErrAccessDenied
	}
	if !b.CanBeRescheduled() {
		return fmt.Errorf("%w: status %s", ErrCannotReschedule, b.Status)
	}
	if b.StartAt.Equal(req.NewStartAt) {
		return fmt.Errorf("%w: booking already starts at %s", ErrInvalidInput, req.NewStartAt.Format(time.RFC3339))
	}
	if req.Actor.Role == domain.RoleClient && uc.cfg.MinClientRescheduleNotice > 0 &&
		b.StartAt.Sub(now) < uc.cfg.MinClientRescheduleNotice {
		return fmt.Errorf("%w: booking starts at %s", ErrTooLateToReschedule, b.StartAt.Format(time.RFC3339))
	}
	if req.Actor.Role != domain.RoleAdmin && uc.remaining(b, req.Actor.Role) <= 0 {
		return fmt.Errorf("%w: role %s", ErrRescheduleLimitReached, req.Actor.Role)
	}
	return nil
}

// validateWindow проверяет, что новый день не дальше окна переноса
func validateWindow(startAt, now time.Time, loc *time.Location, windowDays int) error {
	if windowDays <= 0 {
		return nil
	}
	today, _ := slotgen.DayBounds(now, loc)
	day, _ := slotgen.DayBounds(startAt, loc)
	if !day.Before(today.AddDate(0, 0, windowDays)) {
		return ErrDateTooFarInFuture
	}
	return nil
}

// validateSlot проверяет, что начало совпадает со слотом сетки и не отсечено lead time или перерывом
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
