package get_availability

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	if dateOf(req.To, time.UTC).Before(dateOf(req.From, time.UTC)) {
		return fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	return nil
}

// clampRange ограничивает диапазон снизу сегодняшним днём, сверху горизонтом от начала
func clampRange(from, to, today time.Time, horizonDays int) (time.Time, time.Time) {
	if from.Before(today) {
		from = today
	}
	if horizonDays > 0 {
		last := from.AddDate(0, 0, horizonDays-1)
		if to.After(last) {
			to = last
		}
	}
	return from, to
}

// dateOf переносит календарную дату t в полночь таймзоны loc
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
