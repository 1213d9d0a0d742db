package outbox

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
)

var eventColumns = []string{"id", "event_id", "aggregate_id", "event_type", "payload", "created_at"}

func newMockRepo(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), wrapped, mock
}

func TestRepository_FetchUnpublished_SkipLockedInTransaction(t *testing.T) {
	repo, wrapped, mock := newMockRepo(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events WHERE published_at IS NULL ORDER BY id ASC LIMIT 50 FOR UPDATE SKIP LOCKED")).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(3, "7f0c2a4e-1111-4c6b-9a55-0d7c2b7e0001", 42, domain.EventBookingCreated, []byte(`{"booking_id":42}`), now))
	mock.ExpectCommit()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	events, err := repo.FetchUnpublished(dbmetrics.WithTx(context.Background(), tx), 50)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, events, 1)
	assert.Equal(t, int64(42), events[0].AggregateID)
	assert.JSONEq(t, `{"booking_id":42}`, string(events[0].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchUnpublished_NoLockOutsideTransaction(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM outbox_events WHERE published_at IS NULL ORDER BY id ASC LIMIT 10$`).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	events, err := repo.FetchUnpublished(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkPublished(t *testing.T) {
	repo, _, mock := newMockRepo(t)
	publishedAt := time.Date(2025, 3, 10, 9, 0, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events SET published_at = $1 WHERE id IN ($2,$3)")).
		WithArgs(publishedAt, int64(3), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.MarkPublished(context.Background(), []int64{3, 4}, publishedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkPublished_EmptyIsNoop(t *testing.T) {
	repo, _, mock := newMockRepo(t)

	require.NoError(t, repo.MarkPublished(context.Background(), nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
