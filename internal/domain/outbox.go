package domain

import "time"

// Event types written to the outbox
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingRescheduled   = "booking.rescheduled"

	// EventEffectPrefix prefixes lifecycle effect commands, e.g. booking.effect.refund_payment
	EventEffectPrefix = "booking.effect."
)

// OutboxEvent is a side-effect command stored in the same transaction as the state change
type OutboxEvent struct {
	ID          int64
	EventID     string
	AggregateID int64
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// BookingEventPayload payload of outbox events about a booking
type BookingEventPayload struct {
	BookingID      int64          `json:"booking_id"`
	ProviderID     int64          `json:"provider_id"`
	ClientID       int64          `json:"client_id"`
	ServiceID      int64          `json:"service_id"`
	StartAt        time.Time      `json:"start_at"`
	EndAt          time.Time      `json:"end_at"`
	Status         BookingStatus  `json:"status"`
	PreviousStatus *BookingStatus `json:"previous_status,omitempty"`
	ActorID        int64          `json:"actor_id"`
	ActorRole      ActorRole      `json:"actor_role"`
	Reason         *string        `json:"reason,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`

	// Set only for cancellations
	CancellationFee *float64 `json:"cancellation_fee,omitempty"`
}

// NewBookingEventPayload builds a payload from the booking state
func NewBookingEventPayload(b *Booking, actor Actor, previous *BookingStatus, reason *string, at time.Time) BookingEventPayload {
	return BookingEventPayload{
		BookingID:      b.ID,
		ProviderID:     b.ProviderID,
		ClientID:       b.ClientID,
		ServiceID:      b.ServiceID,
		StartAt:        b.StartAt,
		EndAt:          b.EndAt,
		Status:         b.Status,
		PreviousStatus: previous,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		Reason:         reason,
		OccurredAt:     at,
	}
}
