package get_provider_bookings

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
)

// ProviderBookingsQuery query параметры (все опциональны)
// date задаёт один день, from/to задают период (to включительно)
type ProviderBookingsQuery struct {
	Date            time.Time `schema:"date"`
	From            time.Time `schema:"from"`
	To              time.Time `schema:"to"`
	Status          string    `schema:"status"`
	IncludeInactive bool      `schema:"includeInactive"`
}

// ToServiceRequest формирует запрос к сервису
// Даты трактуются как сутки UTC
func (q *ProviderBookingsQuery) ToServiceRequest(actor domain.Actor, providerID int64) *models.GetProviderBookingsRequest {
	req := &models.GetProviderBookingsRequest{
		Actor:           actor,
		ProviderID:      providerID,
		IncludeInactive: q.IncludeInactive,
	}

	if q.Status != "" {
		status := q.Status
		req.Status = &status
	}

	switch {
	case !q.Date.IsZero():
		from, to := q.Date, q.Date.AddDate(0, 0, 1)
		req.From, req.To = &from, &to
	case !q.From.IsZero() || !q.To.IsZero():
		if !q.From.IsZero() {
			from := q.From
			req.From = &from
		}
		if !q.To.IsZero() {
			to := q.To.AddDate(0, 0, 1)
			req.To = &to
		}
	}

	return req
}
