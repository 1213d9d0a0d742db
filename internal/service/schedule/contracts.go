package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error)
	GetWeek(ctx context.Context, providerID int64) ([]*domain.WorkingHoursEntry, error)
	UpsertWorkingHours(ctx context.Context, entry *domain.WorkingHoursEntry) error
	CreateBlockedInterval(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error)
	DeleteBlockedInterval(ctx context.Context, providerID, blockID int64) error
	GetBlockedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.BlockedInterval, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetBookedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookedInterval, error)
}

// Locker блокировка расписания мастера, общая с созданием и переносом броней
type Locker interface {
	Lock(ctx context.Context, key string, wait time.Duration) (locker.Unlock, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
