package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	getAvailability "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_availability"
)

// AvailabilityQuery query параметры запроса
type AvailabilityQuery struct {
	ServiceID int64     `schema:"serviceId" validate:"required,gt=0"`
	From      time.Time `schema:"from" validate:"required"` // YYYY-MM-DD
	To        time.Time `schema:"to" validate:"required"`   // YYYY-MM-DD, включительно
}

// SlotResponse слот в ответе
type SlotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// AvailabilityResponse HTTP response model
// Days: дата YYYY-MM-DD -> слоты дня; нерабочие дни отсутствуют
type AvailabilityResponse struct {
	ProviderID      int64                     `json:"providerId"`
	ServiceID       int64                     `json:"serviceId"`
	DurationMinutes int                       `json:"durationMinutes"`
	Timezone        string                    `json:"timezone"`
	From            string                    `json:"from"`
	To              string                    `json:"to"`
	Days            map[string][]SlotResponse `json:"days"`
}

// ToUseCaseRequest конвертирует query в модель use case
func (q *AvailabilityQuery) ToUseCaseRequest(providerID int64) *getAvailability.Request {
	return &getAvailability.Request{
		ProviderID: providerID,
		ServiceID:  q.ServiceID,
		From:       q.From,
		To:         q.To,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Timezone:        resp.Timezone,
		From:            resp.From.Format(domain.DateFormat),
		To:              resp.To.Format(domain.DateFormat),
		Days:            make(map[string][]SlotResponse, len(resp.Days)),
	}

	for _, day := range resp.Days {
		slots := make([]SlotResponse, 0, len(day.Slots))
		for _, s := range day.Slots {
			slots = append(slots, SlotResponse{Start: s.Start, End: s.End, Available: s.Available})
		}
		out.Days[day.Date.Format(domain.DateFormat)] = slots
	}

	return out
}
