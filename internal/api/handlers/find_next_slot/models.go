package find_next_slot

import (
	"time"

	findNextSlot "github.com/m04kA/SMC-SpaBookingService/internal/usecase/find_next_slot"
)

// NextSlotQuery query параметры запроса
type NextSlotQuery struct {
	ServiceID int64     `schema:"serviceId" validate:"required,gt=0"`
	From      time.Time `schema:"from"` // YYYY-MM-DD, по умолчанию сегодня
}

// NextSlotResponse HTTP response model
type NextSlotResponse struct {
	ProviderID int64     `json:"providerId"`
	ServiceID  int64     `json:"serviceId"`
	Timezone   string    `json:"timezone"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

func (q *NextSlotQuery) ToUseCaseRequest(providerID int64) *findNextSlot.Request {
	return &findNextSlot.Request{
		ProviderID: providerID,
		ServiceID:  q.ServiceID,
		From:       q.From,
	}
}

func FromUseCaseResponse(resp *findNextSlot.Response) *NextSlotResponse {
	return &NextSlotResponse{
		ProviderID: resp.ProviderID,
		ServiceID:  resp.ServiceID,
		Timezone:   resp.Timezone,
		Start:      resp.Slot.Start,
		End:        resp.Slot.End,
	}
}
