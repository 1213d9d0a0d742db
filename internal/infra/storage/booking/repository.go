package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/pgerrors"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

const tableBookings = "bookings"

var bookingColumns = []string{
	"id",
	"provider_id",
	"client_id",
	"service_id",
	"start_at",
	"end_at",
	"duration_minutes",
	"status",
	"service_name",
	"service_price",
	"notes",
	"cancellation_reason",
	"cancelled_by",
	"confirmed_at",
	"started_at",
	"completed_at",
	"cancelled_at",
	"client_reschedules",
	"provider_reschedules",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Пересечение с активной бронью того же мастера отклоняется ограничением БД и возвращается как ErrSlotNotAvailable
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"provider_id",
			"client_id",
			"service_id",
			"start_at",
			"end_at",
			"duration_minutes",
			"status",
			"service_name",
			"service_price",
			"notes",
		).
		Values(
			booking.ProviderID,
			booking.ClientID,
			booking.ServiceID,
			booking.StartAt,
			booking.EndAt,
			booking.DurationMinutes,
			booking.Status,
			booking.ServiceName,
			booking.ServicePrice,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if pgerrors.IsExclusionViolation(err) {
		return nil, ErrSlotNotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до её завершения
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetByClientID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("start_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByProviderWithFilter получает бронирования мастера с фильтрацией
// по периоду [From, To), статусу и признаку IncludeInactive
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)})
	}

	query, args, err := selectBuilder.OrderBy("start_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetBookedIntervals возвращает интервалы активных бронирований мастера, пересекающиеся с [from, to)
// Внутри транзакции найденные строки блокируются (FOR UPDATE)
func (r *Repository) GetBookedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "start_at", "end_at").
		From(tableBookings).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookedIntervals - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	intervals := make([]domain.BookedInterval, 0)
	for rows.Next() {
		var interval domain.BookedInterval
		if err := rows.Scan(&interval.BookingID, &interval.Start, &interval.End); err != nil {
			return nil, fmt.Errorf("%w: GetBookedIntervals - scan row: %v", ErrScanRow, err)
		}
		intervals = append(intervals, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookedIntervals - rows error: %w", ErrScanRow, err)
	}

	return intervals, nil
}

// UpdateStatus сохраняет статус бронирования вместе с временными метками жизненного цикла
func (r *Repository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("status", booking.Status).
		Set("confirmed_at", booking.ConfirmedAt).
		Set("started_at", booking.StartedAt).
		Set("completed_at", booking.CompletedAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_by", booking.CancelledBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// Reschedule переносит бронирование на новый интервал и сохраняет счётчики переносов
func (r *Repository) Reschedule(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("start_at", booking.StartAt).
		Set("end_at", booking.EndAt).
		Set("client_reschedules", booking.ClientReschedules).
		Set("provider_reschedules", booking.ProviderReschedules).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if pgerrors.IsExclusionViolation(err) {
		return ErrSlotNotAvailable
	}
	if err != nil {
		return fmt.Errorf("%w: Reschedule - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.ProviderID,
		&booking.ClientID,
		&booking.ServiceID,
		&booking.StartAt,
		&booking.EndAt,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.ServiceName,
		&booking.ServicePrice,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.ConfirmedAt,
		&booking.StartedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&booking.ClientReschedules,
		&booking.ProviderReschedules,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	res := make([]string, len(statuses))
	for i, s := range statuses {
		res[i] = string(s)
	}
	return res
}
