package notifier

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Message сообщение для брокера
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Publisher отправляет сообщения во внешний брокер
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

// OutboxRepository источник событий для реле
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector счётчики публикаций (nil-safe *metrics.Metrics)
type MetricsCollector interface {
	IncPublished(eventType string)
	IncPublishFailure()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
