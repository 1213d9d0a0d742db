package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
)

var serviceColumns = []string{"id", "provider_id", "name", "duration_minutes", "price", "is_active"}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestRepository_GetService(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id, name, duration_minutes, price, is_active FROM services WHERE id = $1 AND is_active = $2")).
		WithArgs(int64(10), true).
		WillReturnRows(sqlmock.NewRows(serviceColumns).AddRow(10, 1, "Stone massage", 90, "3500.00", true))

	svc, err := repo.GetService(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 90, svc.DurationMinutes)
	assert.Equal(t, 3500.0, svc.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetService_NullPrice(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WillReturnRows(sqlmock.NewRows(serviceColumns).AddRow(11, 1, "Consultation", 30, nil, true))

	svc, err := repo.GetService(context.Background(), 11)

	require.NoError(t, err)
	assert.Zero(t, svc.Price)
	assert.Equal(t, "Consultation", svc.Name)
}

func TestRepository_GetService_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WillReturnRows(sqlmock.NewRows(serviceColumns))

	_, err := repo.GetService(context.Background(), 404)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}
