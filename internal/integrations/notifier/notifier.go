package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

const defaultNotifyTimeout = 5 * time.Second

// Notifier отправляет уведомления об изменении бронирований после коммита
// Отправка асинхронная; ошибки только логируются и не влияют на уже сохранённые изменения
type Notifier struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	logger    Logger
	wg        sync.WaitGroup
}

func NewNotifier(publisher Publisher, topic string, logger Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		timeout:   defaultNotifyTimeout,
		logger:    logger,
	}
}

// Notify ставит уведомление в отправку и сразу возвращается
func (n *Notifier) Notify(_ context.Context, eventType string, payload domain.BookingEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	msg := Message{
		Topic: n.topic,
		Key:   []byte(strconv.FormatInt(payload.BookingID, 10)),
		Value: value,
		Headers: map[string]string{
			"event_id":   uuid.NewString(),
			"event_type": eventType,
		},
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Контекст запроса завершится раньше отправки
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.publisher.Publish(ctx, msg); err != nil {
			n.logger.Warn("Notifier: failed to send %s for booking_id=%d: %v", eventType, payload.BookingID, err)
		}
	}()

	return nil
}

// Wait ожидает завершения отправок в полёте
func (n *Notifier) Wait() {
	n.wg.Wait()
}
