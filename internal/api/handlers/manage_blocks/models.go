package manage_blocks

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
)

// CreateBlockRequest HTTP request model (время в RFC3339)
type CreateBlockRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required,gtfield=Start"`
	Reason *string   `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// ListBlocksQuery query параметры списка блокировок
type ListBlocksQuery struct {
	From time.Time `schema:"from" validate:"required"`
	To   time.Time `schema:"to" validate:"required"`
}

func (r *CreateBlockRequest) ToServiceRequest(actor domain.Actor, providerID int64) *models.BlockRequest {
	return &models.BlockRequest{
		Actor:      actor,
		ProviderID: providerID,
		Start:      r.Start,
		End:        r.End,
		Reason:     r.Reason,
	}
}

// ToServiceRequest to включительно: блокировки берутся до начала следующего дня
func (q *ListBlocksQuery) ToServiceRequest(actor domain.Actor, providerID int64) *models.ListBlocksRequest {
	return &models.ListBlocksRequest{
		Actor:      actor,
		ProviderID: providerID,
		From:       q.From,
		To:         q.To.AddDate(0, 0, 1),
	}
}
