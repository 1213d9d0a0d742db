package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error)
	GetWorkingHours(ctx context.Context, providerID int64, day time.Weekday) (*domain.WorkingHoursEntry, error)
	GetBlockedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.BlockedInterval, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]domain.BookedInterval, error)
	Reschedule(ctx context.Context, booking *domain.Booking) error
}

// HistoryRepository интерфейс журнала изменений бронирований
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.BookingHistoryEntry) error
}

// OutboxRepository интерфейс outbox для побочных эффектов
type OutboxRepository interface {
	Add(ctx context.Context, event *domain.OutboxEvent) error
}

// Locker блокировка расписания мастера с ограниченным ожиданием
type Locker interface {
	Lock(ctx context.Context, key string, wait time.Duration) (locker.Unlock, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправка уведомлений после коммита
type Notifier interface {
	Notify(ctx context.Context, eventType string, payload domain.BookingEventPayload) error
}

// MetricsCollector счётчик конфликтов
type MetricsCollector interface {
	IncConflict(reason string)
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
