package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error)
	GetWorkingHours(ctx context.Context, providerID int64, day time.Weekday) (*domain.WorkingHoursEntry, error)
	GetBlockedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.BlockedInterval, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetBookedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookedInterval, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
