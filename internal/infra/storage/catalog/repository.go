package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
)

// Repository каталог услуг мастеров
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает активную услугу по ID
func (r *Repository) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "provider_id", "name", "duration_minutes", "price", "is_active").
		From("services").
		Where(squirrel.Eq{"id": serviceID, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s     domain.Service
		price sql.NullFloat64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ProviderID,
		&s.Name,
		&s.DurationMinutes,
		&price,
		&s.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}
	// Цена не указана - услуга бесплатна
	s.Price = price.Float64

	return &s, nil
}
