package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
)

func newBooking(providerID int64, start time.Time) *domain.Booking {
	return &domain.Booking{
		ProviderID:      providerID,
		ClientID:        10,
		ServiceID:       1,
		StartAt:         start,
		EndAt:           start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          domain.StatusPending,
	}
}

func TestBookingRepository_CreateRejectsOverlap(t *testing.T) {
	store := NewStore()
	repo := store.Bookings()
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	first, err := repo.Create(ctx, newBooking(1, start))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = repo.Create(ctx, newBooking(1, start.Add(30*time.Minute)))
	assert.ErrorIs(t, err, bookingRepo.ErrSlotNotAvailable)

	// Соседний интервал и другой мастер не конфликтуют
	_, err = repo.Create(ctx, newBooking(1, start.Add(time.Hour)))
	assert.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(2, start))
	assert.NoError(t, err)

	// Отменённая бронь освобождает интервал
	first.Status = domain.StatusCancelled
	require.NoError(t, repo.UpdateStatus(ctx, first))
	_, err = repo.Create(ctx, newBooking(1, start))
	assert.NoError(t, err)
}

func TestBookingRepository_GetBookedIntervals(t *testing.T) {
	store := NewStore()
	repo := store.Bookings()
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newBooking(1, day.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(1, day.Add(33*time.Hour)))
	require.NoError(t, err)

	intervals, err := repo.GetBookedIntervals(ctx, 1, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Equal(day.Add(9*time.Hour)))
}

func TestTxManager_RollbackOnError(t *testing.T) {
	store := NewStore()
	tx := store.TxManager()
	repo := store.Bookings()
	boom := errors.New("boom")

	err := tx.DoSerializable(context.Background(), func(ctx context.Context) error {
		_, err := repo.Create(ctx, newBooking(1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	list, err := repo.GetByProviderWithFilter(context.Background(), domain.ProviderBookingsFilter{ProviderID: 1, IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScheduleRepository(t *testing.T) {
	store := NewStore()
	repo := store.Schedule()
	ctx := context.Background()

	_, err := repo.GetProvider(ctx, 1)
	assert.ErrorIs(t, err, scheduleRepo.ErrProviderNotFound)

	store.AddProvider(domain.Provider{ID: 1, Name: "Anna", IsActive: true})
	store.SetWorkingHours(domain.WorkingHoursEntry{ProviderID: 1, DayOfWeek: time.Monday, IsWorking: true, StartTime: "09:00", EndTime: "17:00"})

	week, err := repo.GetWeek(ctx, 1)
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.True(t, week[time.Monday].IsWorking)
	assert.False(t, week[time.Sunday].IsWorking)

	assert.ErrorIs(t, repo.DeleteBlockedInterval(ctx, 1, 99), scheduleRepo.ErrBlockNotFound)
}

func TestStore_LoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[providers]]
id = 1
name = "Anna"
timezone = "UTC"

  [[providers.services]]
  id = 10
  name = "Classic massage"
  duration_minutes = 60
  price = 3000

  [[providers.working_hours]]
  day_of_week = 1
  start = "09:00"
  end = "17:00"
  break_start = "13:00"
  break_end = "14:00"
`), 0o644))

	store := NewStore()
	require.NoError(t, store.LoadSeed(path))

	svc, err := store.Catalog().GetService(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 60, svc.DurationMinutes)
	assert.Equal(t, int64(1), svc.ProviderID)

	wh, err := store.Schedule().GetWorkingHours(context.Background(), 1, time.Monday)
	require.NoError(t, err)
	assert.True(t, wh.HasBreak())
}
