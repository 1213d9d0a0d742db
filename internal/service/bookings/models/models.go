package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetClientBookingsRequest запрос на получение бронирований клиента
type GetClientBookingsRequest struct {
	Actor    domain.Actor
	ClientID int64
	Status   *string
}

// GetProviderBookingsRequest запрос на получение бронирований мастера
type GetProviderBookingsRequest struct {
	Actor           domain.Actor
	ProviderID      int64
	From            *time.Time // Начало периода (опционально)
	To              *time.Time // Конец периода (опционально)
	Status          *string    // Фильтр по статусу (опционально)
	IncludeInactive bool       // Включить отменённые и no-show
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:      r.ProviderID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64     `json:"id"`
	ProviderID      int64     `json:"providerId"`
	ClientID        int64     `json:"clientId"`
	ServiceID       int64     `json:"serviceId"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Notes        *string `json:"notes,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	ClientReschedules   int `json:"clientReschedules"`
	ProviderReschedules int `json:"providerReschedules"`

	// Переходы, доступные запросившему
	AllowedTransitions []string `json:"allowedTransitions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// HistoryEntryResponse запись журнала изменений
type HistoryEntryResponse struct {
	ID             int64     `json:"id"`
	ActorID        int64     `json:"actorId"`
	ActorRole      string    `json:"actorRole"`
	Action         string    `json:"action"`
	PreviousStatus *string   `json:"previousStatus,omitempty"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason,omitempty"`
	Details        *string   `json:"details,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HistoryListResponse журнал изменений брони
type HistoryListResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                  b.ID,
		ProviderID:          b.ProviderID,
		ClientID:            b.ClientID,
		ServiceID:           b.ServiceID,
		StartAt:             b.StartAt,
		EndAt:               b.EndAt,
		DurationMinutes:     b.DurationMinutes,
		Status:              string(b.Status),
		ServiceName:         b.ServiceName,
		ServicePrice:        b.ServicePrice,
		Notes:               b.Notes,
		CancellationReason:  b.CancellationReason,
		ConfirmedAt:         b.ConfirmedAt,
		StartedAt:           b.StartedAt,
		CompletedAt:         b.CompletedAt,
		CancelledAt:         b.CancelledAt,
		ClientReschedules:   b.ClientReschedules,
		ProviderReschedules: b.ProviderReschedules,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainHistory конвертирует журнал изменений в DTO
func FromDomainHistory(entries []*domain.BookingHistoryEntry) *HistoryListResponse {
	resp := &HistoryListResponse{
		Entries: make([]HistoryEntryResponse, 0, len(entries)),
	}

	for _, e := range entries {
		entry := HistoryEntryResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			ActorRole: string(e.ActorRole),
			Action:    string(e.Action),
			NewStatus: string(e.NewStatus),
			Reason:    e.Reason,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.PreviousStatus != nil {
			prev := string(*e.PreviousStatus)
			entry.PreviousStatus = &prev
		}
		resp.Entries = append(resp.Entries, entry)
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
