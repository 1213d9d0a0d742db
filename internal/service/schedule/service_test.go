package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
	createBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

const providerID = 1

var (
	owner = domain.Actor{ID: providerID, Role: domain.RoleProvider}
	admin = domain.Actor{ID: 999, Role: domain.RoleAdmin}

	monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddProvider(domain.Provider{ID: providerID, Name: "Anna", Timezone: "UTC", IsActive: true})
	return newService(store, locker.NewMemoryLocker()), store
}

func newService(store *memory.Store, l Locker) *Service {
	return NewService(store.Schedule(), store.Bookings(), l, store.TxManager(), Config{LockWait: 200 * time.Millisecond}, logger.NewNop())
}

func ts(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

func TestUpsertDayAndGetWeek(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	day, err := s.UpsertDay(ctx, &models.UpsertDayRequest{
		Actor:      owner,
		ProviderID: providerID,
		DayOfWeek:  time.Monday,
		IsWorking:  true,
		StartTime:  "09:00",
		EndTime:    "17:00",
		BreakStart: ts("13:00"),
		BreakEnd:   ts("14:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "13:00", *day.BreakStart)

	week, err := s.GetWeek(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, week.Days, 7)
	assert.False(t, week.Days[0].IsWorking)
	assert.Nil(t, week.Days[0].StartTime)
	assert.True(t, week.Days[1].IsWorking)
	assert.Equal(t, "09:00", *week.Days[1].StartTime)
	assert.Equal(t, "17:00", *week.Days[1].EndTime)

	_, err = s.GetWeek(ctx, 404)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestUpsertDay_Validation(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.UpsertDayRequest
		err  error
	}{
		{
			name: "start after end",
			req:  models.UpsertDayRequest{DayOfWeek: time.Monday, IsWorking: true, StartTime: "18:00", EndTime: "09:00"},
			err:  ErrInvalidSchedule,
		},
		{
			name: "bad format",
			req:  models.UpsertDayRequest{DayOfWeek: time.Monday, IsWorking: true, StartTime: "9am", EndTime: "17:00"},
			err:  ErrInvalidSchedule,
		},
		{
			name: "break outside window",
			req: models.UpsertDayRequest{DayOfWeek: time.Monday, IsWorking: true, StartTime: "09:00", EndTime: "17:00",
				BreakStart: ts("16:30"), BreakEnd: ts("17:30")},
			err: ErrInvalidSchedule,
		},
		{
			name: "half break",
			req:  models.UpsertDayRequest{DayOfWeek: time.Monday, IsWorking: true, StartTime: "09:00", EndTime: "17:00", BreakStart: ts("13:00")},
			err:  ErrInvalidSchedule,
		},
		{
			name: "bad weekday",
			req:  models.UpsertDayRequest{DayOfWeek: 7},
			err:  ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Actor = owner
			req.ProviderID = providerID
			_, err := s.UpsertDay(ctx, &req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := s.UpsertDay(ctx, &models.UpsertDayRequest{
		Actor:      domain.Actor{ID: 2, Role: domain.RoleProvider},
		ProviderID: providerID,
		DayOfWeek:  time.Monday,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = s.UpsertDay(ctx, &models.UpsertDayRequest{Actor: admin, ProviderID: providerID, DayOfWeek: time.Sunday})
	assert.NoError(t, err)
}

func TestBlockAndUnblock(t *testing.T) {
	s, store := setup(t)
	ctx := context.Background()

	block, err := s.Block(ctx, &models.BlockRequest{
		Actor:      owner,
		ProviderID: providerID,
		Start:      monday.Add(12 * time.Hour),
		End:        monday.Add(13 * time.Hour),
		Reason:     ptr.Ptr("training"),
	})
	require.NoError(t, err)
	assert.NotZero(t, block.ID)

	list, err := s.ListBlocks(ctx, &models.ListBlocksRequest{Actor: owner, ProviderID: providerID, From: monday, To: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, list.Blocks, 1)

	blocked, err := store.Schedule().GetBlockedIntervals(ctx, providerID, monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, blocked, 1)

	require.NoError(t, s.Unblock(ctx, owner, providerID, block.ID))
	assert.ErrorIs(t, s.Unblock(ctx, owner, providerID, block.ID), ErrBlockNotFound)

	_, err = s.Block(ctx, &models.BlockRequest{Actor: owner, ProviderID: providerID, Start: monday.Add(13 * time.Hour), End: monday.Add(12 * time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Block(ctx, &models.BlockRequest{Actor: domain.Actor{ID: 100, Role: domain.RoleClient}, ProviderID: providerID,
		Start: monday, End: monday.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestBlock_OverlapsBooking(t *testing.T) {
	s, store := setup(t)
	ctx := context.Background()

	_, err := store.Bookings().Create(ctx, &domain.Booking{
		ProviderID: providerID,
		ClientID:   100,
		ServiceID:  10,
		StartAt:    monday.Add(10 * time.Hour),
		EndAt:      monday.Add(11 * time.Hour),
		Status:     domain.StatusConfirmed,
	})
	require.NoError(t, err)

	_, err = s.Block(ctx, &models.BlockRequest{Actor: owner, ProviderID: providerID,
		Start: monday.Add(10*time.Hour + 30*time.Minute), End: monday.Add(12 * time.Hour)})
	assert.ErrorIs(t, err, ErrBlockOverlapsBooking)

	// граница полуоткрытого интервала не пересекается
	_, err = s.Block(ctx, &models.BlockRequest{Actor: owner, ProviderID: providerID,
		Start: monday.Add(11 * time.Hour), End: monday.Add(12 * time.Hour)})
	assert.NoError(t, err)
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string, time.Duration) (locker.Unlock, error) {
	return nil, locker.ErrLockTimeout
}

func TestBlock_LockTimeoutIsBusy(t *testing.T) {
	store := memory.NewStore()
	store.AddProvider(domain.Provider{ID: providerID, Name: "Anna", Timezone: "UTC", IsActive: true})
	s := newService(store, busyLocker{})

	_, err := s.Block(context.Background(), &models.BlockRequest{Actor: owner, ProviderID: providerID,
		Start: monday.Add(10 * time.Hour), End: monday.Add(12 * time.Hour)})
	assert.ErrorIs(t, err, ErrScheduleBusy)

	blocked, err := store.Schedule().GetBlockedIntervals(context.Background(), providerID, monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestBlock_ConcurrentWithCreateBooking(t *testing.T) {
	day := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 3)
	dayEnd := day.AddDate(0, 0, 1)

	for round := 0; round < 20; round++ {
		store := memory.NewStore()
		store.AddProvider(domain.Provider{ID: providerID, Name: "Anna", Timezone: "UTC", IsActive: true})
		store.AddService(domain.Service{ID: 10, ProviderID: providerID, Name: "Classic massage", DurationMinutes: 60, IsActive: true})
		store.SetWorkingHours(domain.WorkingHoursEntry{
			ProviderID: providerID,
			DayOfWeek:  day.Weekday(),
			IsWorking:  true,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("17:00"),
		})

		sharedLocker := locker.NewMemoryLocker()
		s := newService(store, sharedLocker)
		booking := createBooking.NewUseCase(
			store.Schedule(), store.Catalog(), store.Bookings(), store.History(), store.Outbox(),
			sharedLocker, store.TxManager(), nil, (*metrics.Metrics)(nil),
			createBooking.Config{LeadTime: time.Hour, MaxHorizonDays: 30, LockWait: 2 * time.Second},
			logger.NewNop(),
		)

		var (
			wg                   sync.WaitGroup
			blockErr, bookingErr error
			start                = make(chan struct{})
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, blockErr = s.Block(context.Background(), &models.BlockRequest{Actor: owner, ProviderID: providerID,
				Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, bookingErr = booking.Execute(context.Background(), &createBooking.Request{
				Actor:      domain.Actor{ID: 100, Role: domain.RoleClient},
				ProviderID: providerID,
				ServiceID:  10,
				ClientID:   100,
				StartAt:    day.Add(10 * time.Hour),
			})
		}()
		close(start)
		wg.Wait()

		// Ровно одна сторона занимает интервал
		if blockErr == nil {
			require.ErrorIs(t, bookingErr, createBooking.ErrBookingConflict)
		} else {
			require.ErrorIs(t, blockErr, ErrBlockOverlapsBooking)
			require.NoError(t, bookingErr)
		}

		booked, err := store.Bookings().GetBookedIntervals(context.Background(), providerID, day, dayEnd)
		require.NoError(t, err)
		blocked, err := store.Schedule().GetBlockedIntervals(context.Background(), providerID, day, dayEnd)
		require.NoError(t, err)
		assert.Equal(t, 1, len(booked)+len(blocked))
	}
}
