package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

const (
	tableProviders        = "providers"
	tableWorkingHours     = "working_hours"
	tableBlockedIntervals = "blocked_intervals"
)

// Repository расписание мастеров: рабочие часы по дням недели и блокировки времени
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetProvider получает активного мастера по ID
func (r *Repository) GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "timezone", "is_active", "created_at").
		From(tableProviders).
		Where(squirrel.Eq{"id": providerID, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Provider
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Timezone, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - scan provider: %w", ErrScanRow, err)
	}

	return &p, nil
}

// GetWorkingHours получает расписание мастера на день недели
// Отсутствие строки означает выходной день
func (r *Repository) GetWorkingHours(ctx context.Context, providerID int64, day time.Weekday) (*domain.WorkingHoursEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectWorkingHours().
		Where(squirrel.Eq{"provider_id": providerID, "day_of_week": int(day)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanWorkingHours(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NonWorkingDay(providerID, day), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkingHours - scan row: %w", ErrScanRow, err)
	}

	return entry, nil
}

// GetWeek получает расписание на все 7 дней (воскресенье первым)
func (r *Repository) GetWeek(ctx context.Context, providerID int64) ([]*domain.WorkingHoursEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectWorkingHours().
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeek - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeek - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	week := make([]*domain.WorkingHoursEntry, 7)
	for rows.Next() {
		entry, err := scanWorkingHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetWeek - scan row: %v", ErrScanRow, err)
		}
		if entry.DayOfWeek >= time.Sunday && entry.DayOfWeek <= time.Saturday {
			week[entry.DayOfWeek] = entry
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeek - rows error: %w", ErrScanRow, err)
	}

	for day := range week {
		if week[day] == nil {
			week[day] = domain.NonWorkingDay(providerID, time.Weekday(day))
		}
	}

	return week, nil
}

// UpsertWorkingHours создает или заменяет расписание на день недели
func (r *Repository) UpsertWorkingHours(ctx context.Context, entry *domain.WorkingHoursEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableWorkingHours).
		Columns("provider_id", "day_of_week", "is_working", "start_time", "end_time", "break_start", "break_end").
		Values(
			entry.ProviderID,
			int(entry.DayOfWeek),
			entry.IsWorking,
			entry.StartTime,
			entry.EndTime,
			entry.BreakStart,
			entry.BreakEnd,
		).
		Suffix(`ON CONFLICT (provider_id, day_of_week) DO UPDATE SET
			is_working = EXCLUDED.is_working,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertWorkingHours - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// CreateBlockedInterval закрывает интервал времени мастера для бронирования
func (r *Repository) CreateBlockedInterval(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBlockedIntervals).
		Columns("provider_id", "start_at", "end_at", "reason").
		Values(block.ProviderID, block.Start, block.End, block.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlockedInterval - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &block.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateBlockedInterval - execute insert: %w", ErrExecQuery, err)
	}

	return block, nil
}

// DeleteBlockedInterval удаляет блокировку мастера
func (r *Repository) DeleteBlockedInterval(ctx context.Context, providerID, blockID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableBlockedIntervals).
		Where(squirrel.Eq{"id": blockID, "provider_id": providerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedInterval - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedInterval - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlockedInterval - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// GetBlockedIntervals получает блокировки мастера, пересекающиеся с [from, to)
func (r *Repository) GetBlockedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.BlockedInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "start_at", "end_at", "reason", "created_at").
		From(tableBlockedIntervals).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlockedIntervals - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.BlockedInterval, 0)
	for rows.Next() {
		var b domain.BlockedInterval
		if err := rows.Scan(&b.ID, &b.ProviderID, &b.Start, &b.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetBlockedIntervals - scan row: %v", ErrScanRow, err)
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBlockedIntervals - rows error: %w", ErrScanRow, err)
	}

	return blocks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func selectWorkingHours() squirrel.SelectBuilder {
	return psqlbuilder.Select("provider_id", "day_of_week", "is_working", "start_time", "end_time", "break_start", "break_end").
		From(tableWorkingHours)
}

func scanWorkingHours(row rowScanner) (*domain.WorkingHoursEntry, error) {
	var (
		entry domain.WorkingHoursEntry
		day   int
	)

	if err := row.Scan(
		&entry.ProviderID,
		&day,
		&entry.IsWorking,
		&entry.StartTime,
		&entry.EndTime,
		&entry.BreakStart,
		&entry.BreakEnd,
	); err != nil {
		return nil, err
	}
	entry.DayOfWeek = time.Weekday(day)

	return &entry, nil
}
