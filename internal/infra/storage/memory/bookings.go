package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
)

// BookingRepository in-memory аналог booking.Repository
type BookingRepository struct {
	s *Store
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	if booking.Status.BlocksSlot() && r.overlapsLocked(booking.ProviderID, booking.StartAt, booking.EndAt, 0) {
		return nil, bookingRepo.ErrSlotNotAvailable
	}

	r.s.data.bookingSeq++
	now := r.s.now()
	booking.ID = r.s.data.bookingSeq
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.s.data.bookings[booking.ID] = *booking

	return booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.Booking, 0)
	for _, b := range r.s.data.bookings {
		if b.ClientID != clientID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		b := b
		res = append(res, &b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartAt.After(res[j].StartAt) })
	return res, nil
}

func (r *BookingRepository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.Booking, 0)
	for _, b := range r.s.data.bookings {
		if b.ProviderID != filter.ProviderID {
			continue
		}
		if filter.From != nil && !b.EndAt.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.StartAt.Before(*filter.To) {
			continue
		}
		if filter.Status != nil {
			if b.Status != *filter.Status {
				continue
			}
		} else if !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		b := b
		res = append(res, &b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartAt.Before(res[j].StartAt) })
	return res, nil
}

func (r *BookingRepository) GetBookedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookedInterval, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]domain.BookedInterval, 0)
	for _, b := range r.s.data.bookings {
		if b.ProviderID != providerID || !b.IsActive() {
			continue
		}
		if b.StartAt.Before(to) && b.EndAt.After(from) {
			res = append(res, b.Interval())
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Start.Before(res[j].Start) })
	return res, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	stored, ok := r.s.data.bookings[booking.ID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}

	stored.Status = booking.Status
	stored.ConfirmedAt = booking.ConfirmedAt
	stored.StartedAt = booking.StartedAt
	stored.CompletedAt = booking.CompletedAt
	stored.CancelledAt = booking.CancelledAt
	stored.CancellationReason = booking.CancellationReason
	stored.CancelledBy = booking.CancelledBy
	stored.UpdatedAt = r.s.now()
	r.s.data.bookings[booking.ID] = stored

	booking.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *BookingRepository) Reschedule(ctx context.Context, booking *domain.Booking) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	stored, ok := r.s.data.bookings[booking.ID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if stored.IsActive() && r.overlapsLocked(stored.ProviderID, booking.StartAt, booking.EndAt, booking.ID) {
		return bookingRepo.ErrSlotNotAvailable
	}

	stored.StartAt = booking.StartAt
	stored.EndAt = booking.EndAt
	stored.ClientReschedules = booking.ClientReschedules
	stored.ProviderReschedules = booking.ProviderReschedules
	stored.UpdatedAt = r.s.now()
	r.s.data.bookings[booking.ID] = stored

	booking.UpdatedAt = stored.UpdatedAt
	return nil
}

// overlapsLocked эмулирует EXCLUDE-ограничение bookings_no_overlap
func (r *BookingRepository) overlapsLocked(providerID int64, start, end time.Time, exceptID int64) bool {
	for id, b := range r.s.data.bookings {
		if id == exceptID || b.ProviderID != providerID || !b.IsActive() {
			continue
		}
		if b.Interval().Overlaps(start, end) {
			return true
		}
	}
	return false
}
