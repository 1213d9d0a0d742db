package transition_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
}

// StatsRepository агрегаты мастеров и надёжность клиентов
type StatsRepository interface {
	ApplyCompletion(ctx context.Context, providerID int64, completedAt time.Time) error
	ApplyCancellation(ctx context.Context, providerID int64) error
	ApplyNoShow(ctx context.Context, clientID, providerID int64) error
}

// HistoryRepository интерфейс журнала изменений бронирований
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.BookingHistoryEntry) error
}

// OutboxRepository интерфейс outbox для побочных эффектов
type OutboxRepository interface {
	Add(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправка уведомлений после коммита
type Notifier interface {
	Notify(ctx context.Context, eventType string, payload domain.BookingEventPayload) error
}

// MetricsCollector счётчик переходов
type MetricsCollector interface {
	IncTransition(from, to string)
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
