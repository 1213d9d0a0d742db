package history

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

const tableHistory = "booking_history"

// Repository журнал действий над бронированиями (только добавление)
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал
func (r *Repository) Append(ctx context.Context, entry *domain.BookingHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableHistory).
		Columns("booking_id", "actor_id", "actor_role", "action", "previous_status", "new_status", "reason", "details").
		Values(
			entry.BookingID,
			entry.ActorID,
			entry.ActorRole,
			entry.Action,
			entry.PreviousStatus,
			entry.NewStatus,
			entry.Reason,
			entry.Details,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ListByBooking возвращает журнал бронирования в хронологическом порядке
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.BookingHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id", "booking_id", "actor_id", "actor_role", "action",
		"previous_status", "new_status", "reason", "details", "created_at",
	).
		From(tableHistory).
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.BookingHistoryEntry, 0)
	for rows.Next() {
		var e domain.BookingHistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.BookingID,
			&e.ActorID,
			&e.ActorRole,
			&e.Action,
			&e.PreviousStatus,
			&e.NewStatus,
			&e.Reason,
			&e.Details,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %w", ErrScanRow, err)
	}

	return entries, nil
}
