package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal returns true if no transition can leave the status
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// BlocksSlot returns true if a booking in this status occupies provider time
func (s BookingStatus) BlocksSlot() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// ActorRole who performs an action on a booking
type ActorRole string

const (
	RoleClient   ActorRole = "client"
	RoleProvider ActorRole = "provider"
	RoleAdmin    ActorRole = "admin"
)

// IsValid returns true if the role is known
func (r ActorRole) IsValid() bool {
	return r == RoleClient || r == RoleProvider || r == RoleAdmin
}

// Actor identifies the caller of an operation
type Actor struct {
	ID   int64
	Role ActorRole
}

// Booking represents a reservation of provider time for a service
type Booking struct {
	ID              int64
	ProviderID      int64
	ClientID        int64
	ServiceID       int64
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
	Status          BookingStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CancellationReason *string
	CancelledBy        *ActorRole

	ConfirmedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	ClientReschedules   int
	ProviderReschedules int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its interval
func (b *Booking) IsActive() bool {
	return b.Status.BlocksSlot()
}

// CanBeRescheduled returns true if the booking may be moved to another slot
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Interval returns the booked interval occupied by the booking
func (b *Booking) Interval() BookedInterval {
	return BookedInterval{BookingID: b.ID, Start: b.StartAt, End: b.EndAt}
}

// IsParticipant returns true if the actor is the booking's client, its provider or an admin
func (b *Booking) IsParticipant(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleClient:
		return actor.ID == b.ClientID
	case RoleProvider:
		return actor.ID == b.ProviderID
	}
	return false
}

// ProviderBookingsFilter фильтр для получения бронирований мастера
type ProviderBookingsFilter struct {
	ProviderID      int64          // Обязательный параметр
	From            *time.Time     // Начало периода (включительно), nil - без ограничения
	To              *time.Time     // Конец периода (не включительно), nil - без ограничения
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли неактивные бронирования (отмененные, no-show)
}
