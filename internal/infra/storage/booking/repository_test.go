package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
)

func newMockRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), wrapped, mock
}

func TestRepository_Create_ExclusionViolation(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "23P01"})

	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	_, err := repo.Create(context.Background(), &domain.Booking{
		ProviderID: 1,
		ClientID:   2,
		ServiceID:  3,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     domain.StatusPending,
	})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ReturnsGeneratedFields(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	created, err := repo.Create(context.Background(), &domain.Booking{ProviderID: 1, Status: domain.StatusPending})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, now, created.CreatedAt)
}

func TestRepository_GetBookedIntervals_LocksRowsInTransaction(t *testing.T) {
	repo, wrapped, mock := newMockRepo(t)
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, start_at, end_at FROM bookings WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_at", "end_at"}).
			AddRow(5, from.Add(12*time.Hour), from.Add(13*time.Hour)))
	mock.ExpectCommit()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	intervals, err := repo.GetBookedIntervals(dbmetrics.WithTx(context.Background(), tx), 1, from, to)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, intervals, 1)
	assert.Equal(t, int64(5), intervals[0].BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id")).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_UpdateStatus_Cancelled(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	cancelledAt := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	updatedAt := cancelledAt.Add(time.Second)
	reason := "plans changed"
	role := domain.RoleClient

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = $1, confirmed_at = $2, started_at = $3, completed_at = $4, " +
		"cancelled_at = $5, cancellation_reason = $6, cancelled_by = $7, updated_at = NOW() WHERE id = $8 RETURNING updated_at")).
		WithArgs("cancelled", nil, nil, nil, cancelledAt, reason, "client", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))

	booking := &domain.Booking{
		ID:                 42,
		Status:             domain.StatusCancelled,
		CancelledAt:        &cancelledAt,
		CancellationReason: &reason,
		CancelledBy:        &role,
	}
	err := repo.UpdateStatus(context.Background(), booking)

	require.NoError(t, err)
	assert.Equal(t, updatedAt, booking.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.UpdateStatus(context.Background(), &domain.Booking{ID: 404, Status: domain.StatusConfirmed})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_Reschedule_ExclusionViolation(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET start_at = $1, end_at = $2, client_reschedules = $3, provider_reschedules = $4, updated_at = NOW() WHERE id = $5")).
		WithArgs(start, start.Add(time.Hour), 1, 0, int64(42)).
		WillReturnError(&pq.Error{Code: "23P01"})

	err := repo.Reschedule(context.Background(), &domain.Booking{
		ID:                42,
		StartAt:           start,
		EndAt:             start.Add(time.Hour),
		ClientReschedules: 1,
	})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_ScansCancelledBy(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	cancelledAt := start.Add(-3 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
			42, 1, 100, 10, start, start.Add(time.Hour), 60, "cancelled", "Classic massage", 3500.0, nil,
			"plans changed", "provider", nil, nil, nil, cancelledAt, 0, 0, start.Add(-48*time.Hour), cancelledAt,
		))

	booking, err := repo.GetByID(context.Background(), 42)

	require.NoError(t, err)
	require.NotNil(t, booking.CancelledBy)
	assert.Equal(t, domain.RoleProvider, *booking.CancelledBy)
	assert.Equal(t, domain.StatusCancelled, booking.Status)
	assert.Nil(t, booking.Notes)
}
