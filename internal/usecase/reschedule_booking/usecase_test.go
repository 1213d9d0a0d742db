package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

const (
	providerID = int64(1)
	clientID   = int64(100)
)

var (
	testNow = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	monday  = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	client   = domain.Actor{ID: clientID, Role: domain.RoleClient}
	provider = domain.Actor{ID: providerID, Role: domain.RoleProvider}
	admin    = domain.Actor{ID: 999, Role: domain.RoleAdmin}
)

func at(hour, minute int) time.Time {
	return time.Date(monday.Year(), monday.Month(), monday.Day(), hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	uc    *UseCase
	store *memory.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddProvider(domain.Provider{ID: providerID, Name: "Anna", Timezone: "UTC", IsActive: true})
	store.SetWorkingHours(domain.WorkingHoursEntry{
		ProviderID: providerID,
		DayOfWeek:  time.Monday,
		IsWorking:  true,
		StartTime:  types.TimeString("09:00"),
		EndTime:    types.TimeString("17:00"),
	})

	uc := NewUseCase(store.Schedule(), store.Bookings(), store.History(), store.Outbox(),
		locker.NewMemoryLocker(), store.TxManager(), nil, (*metrics.Metrics)(nil),
		Config{
			LeadTime:               time.Hour,
			WindowDays:             90,
			LockWait:               2 * time.Second,
			MaxClientReschedules:   2,
			MaxProviderReschedules: 5,

			MinClientRescheduleNotice: 4 * time.Hour,
		},
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: testNow}

	return &fixture{uc: uc, store: store}
}

func (f *fixture) addBooking(t *testing.T, start time.Time, status domain.BookingStatus, clientReschedules int) *domain.Booking {
	t.Helper()
	b, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		ProviderID:        providerID,
		ClientID:          clientID,
		ServiceID:         10,
		StartAt:           start,
		EndAt:             start.Add(time.Hour),
		DurationMinutes:   60,
		Status:            status,
		ClientReschedules: clientReschedules,
	})
	require.NoError(t, err)
	return b
}

func TestExecute_ClientReschedules(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, at(10, 0), domain.StatusConfirmed, 0)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(14, 0), Actor: client})
	require.NoError(t, err)

	assert.Equal(t, at(14, 0), resp.Booking.StartAt)
	assert.Equal(t, at(15, 0), resp.Booking.EndAt)
	assert.Equal(t, at(10, 0), resp.PreviousAt)
	assert.Equal(t, 1, resp.Booking.ClientReschedules)
	assert.Equal(t, 1, resp.Remaining)

	stored, err := f.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, at(14, 0), stored.StartAt)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	history, err := f.store.History().ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionRescheduled, history[0].Action)
	require.NotNil(t, history[0].Details)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBookingRescheduled, events[0].EventType)

	// старый слот освободился
	booked, err := f.store.Bookings().GetBookedIntervals(context.Background(), providerID, at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestExecute_OwnIntervalIsIgnored(t *testing.T) {
	f := setup(t)
	// бронь не по сетке: 09:30-10:30, перенос на 10:00 пересекается только с ней самой
	b := f.addBooking(t, at(9, 30), domain.StatusPending, 0)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(10, 0), Actor: provider})
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), resp.Booking.StartAt)
	assert.Equal(t, 1, resp.Booking.ProviderReschedules)
	assert.Equal(t, 4, resp.Remaining)
}

func TestExecute_TakenSlotIsConflict(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, at(10, 0), domain.StatusConfirmed, 0)
	f.addBooking(t, at(14, 0), domain.StatusPending, 0)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(14, 0), Actor: client})
	assert.ErrorIs(t, err, ErrBookingConflict)

	stored, err := f.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), stored.StartAt)
	assert.Zero(t, stored.ClientReschedules)
}

func TestExecute_Limits(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, at(10, 0), domain.StatusConfirmed, 2)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(14, 0), Actor: client})
	assert.ErrorIs(t, err, ErrRescheduleLimitReached)

	// администратор без ограничений
	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(14, 0), Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, -1, resp.Remaining)
	assert.Equal(t, 2, resp.Booking.ClientReschedules)
}

func TestExecute_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	completed := f.addBooking(t, at(9, 0), domain.StatusCompleted, 0)
	b := f.addBooking(t, at(10, 0), domain.StatusConfirmed, 0)

	_, err := f.uc.Execute(ctx, &Request{BookingID: completed.ID, NewStartAt: at(14, 0), Actor: client})
	assert.ErrorIs(t, err, ErrCannotReschedule)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: at(14, 0), Actor: domain.Actor{ID: 101, Role: domain.RoleClient}})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: at(10, 0), Actor: client})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: at(14, 30), Actor: client})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: at(14, 0).AddDate(0, 0, 91), Actor: client})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)

	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC), Actor: client})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	// ровно на границе lead time слот доступен
	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, NewStartAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), Actor: client})
	assert.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{BookingID: 404, NewStartAt: at(14, 0), Actor: client})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_ClientTooCloseToStart(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, at(10, 0), domain.StatusConfirmed, 0)
	f.uc.timeProvider = fixedTime{now: at(9, 30)}

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(15, 0), Actor: client})
	require.ErrorIs(t, err, ErrTooLateToReschedule)

	stored, err := f.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), stored.StartAt)
	assert.Zero(t, stored.ClientReschedules)
	assert.Empty(t, f.store.OutboxEvents())

	// на мастера ограничение не распространяется
	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, NewStartAt: at(15, 0), Actor: provider})
	require.NoError(t, err)
	assert.Equal(t, at(15, 0), resp.Booking.StartAt)
}
