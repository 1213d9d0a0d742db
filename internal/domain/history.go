package domain

import "time"

// HistoryAction action recorded in booking history
type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionRescheduled   HistoryAction = "rescheduled"
)

// BookingHistoryEntry is an append-only audit record for a booking
type BookingHistoryEntry struct {
	ID             int64
	BookingID      int64
	ActorID        int64
	ActorRole      ActorRole
	Action         HistoryAction
	PreviousStatus *BookingStatus
	NewStatus      BookingStatus
	Reason         *string
	Details        *string
	CreatedAt      time.Time
}
