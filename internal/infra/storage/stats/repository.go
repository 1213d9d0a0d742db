package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

const (
	tableProviderStats     = "provider_stats"
	tableClientReliability = "client_reliability"

	// noShowPenalty снижение рейтинга надёжности клиента за неявку
	noShowPenalty = 10
)

// Repository счётчики мастеров и надёжность клиентов; обновляются эффектами переходов
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ApplyCompletion учитывает завершённый сеанс мастера
func (r *Repository) ApplyCompletion(ctx context.Context, providerID int64, completedAt time.Time) error {
	return r.upsert(ctx, "ApplyCompletion", tableProviderStats, "provider_id", providerID,
		[]string{"completed_count", "last_completed_at"},
		[]interface{}{1, completedAt},
		`ON CONFLICT (provider_id) DO UPDATE SET
			completed_count = provider_stats.completed_count + 1,
			last_completed_at = EXCLUDED.last_completed_at,
			updated_at = NOW()`)
}

// ApplyCancellation учитывает отмену бронирования мастера
func (r *Repository) ApplyCancellation(ctx context.Context, providerID int64) error {
	return r.upsert(ctx, "ApplyCancellation", tableProviderStats, "provider_id", providerID,
		[]string{"cancelled_count"},
		[]interface{}{1},
		`ON CONFLICT (provider_id) DO UPDATE SET
			cancelled_count = provider_stats.cancelled_count + 1,
			updated_at = NOW()`)
}

// ApplyNoShow снижает надёжность клиента и учитывает неявку у мастера
func (r *Repository) ApplyNoShow(ctx context.Context, clientID, providerID int64) error {
	err := r.upsert(ctx, "ApplyNoShow", tableClientReliability, "client_id", clientID,
		[]string{"no_show_count", "reliability_score"},
		[]interface{}{1, 100 - noShowPenalty},
		fmt.Sprintf(`ON CONFLICT (client_id) DO UPDATE SET
			no_show_count = client_reliability.no_show_count + 1,
			reliability_score = GREATEST(client_reliability.reliability_score - %d, 0),
			updated_at = NOW()`, noShowPenalty))
	if err != nil {
		return err
	}

	return r.upsert(ctx, "ApplyNoShow", tableProviderStats, "provider_id", providerID,
		[]string{"no_show_count"},
		[]interface{}{1},
		`ON CONFLICT (provider_id) DO UPDATE SET
			no_show_count = provider_stats.no_show_count + 1,
			updated_at = NOW()`)
}

func (r *Repository) upsert(
	ctx context.Context,
	op string,
	table string,
	keyColumn string,
	key int64,
	columns []string,
	values []interface{},
	onConflict string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(append([]string{keyColumn}, columns...)...).
		Values(append([]interface{}{key}, values...)...).
		Suffix(onConflict).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build upsert query: %v", ErrBuildQuery, op, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute upsert: %w", ErrExecQuery, op, err)
	}

	return nil
}
