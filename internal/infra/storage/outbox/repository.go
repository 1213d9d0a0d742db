package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

const tableOutbox = "outbox_events"

// Repository таблица исходящих событий (transactional outbox)
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Add сохраняет событие; вызывается в той же транзакции, что и изменение бронирования
func (r *Repository) Add(ctx context.Context, event *domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableOutbox).
		Columns("event_id", "aggregate_id", "event_type", "payload").
		Values(event.EventID, event.AggregateID, event.EventType, event.Payload).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Add - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("%w: Add - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// FetchUnpublished выбирает пачку неопубликованных событий в порядке создания
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько реле не публиковали одно событие
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "event_id", "aggregate_id", "event_type", "payload", "created_at").
		From(tableOutbox).
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %v", ErrScanRow, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableOutbox).
		Set("published_at", publishedAt).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %w", ErrExecQuery, err)
	}

	return nil
}
