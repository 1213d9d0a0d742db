package transition_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if !req.Target.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Target)
	}

	if !req.Actor.Role.IsValid() {
		return fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.Actor.Role)
	}

	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

// validateCancelNotice проверяет, что до начала сеанса осталось не меньше минимума роли
func (uc *UseCase) validateCancelNotice(b *domain.Booking, role domain.ActorRole, now time.Time) error {
	var minNotice time.Duration
	switch role {
	case domain.RoleClient:
		minNotice = uc.cfg.MinClientCancelNotice
	case domain.RoleProvider:
		minNotice = uc.cfg.MinProviderCancelNotice
	default:
		return nil
	}

	if minNotice > 0 && b.StartAt.Sub(now) < minNotice {
		return fmt.Errorf("%w: %s must cancel at least %s before start", ErrTooLateToCancel, role, minNotice)
	}
	return nil
}
