package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msgs ...Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.msgs...)
}

func addEvent(t *testing.T, store *memory.Store, bookingID int64, eventType string) {
	t.Helper()
	err := store.Outbox().Add(context.Background(), &domain.OutboxEvent{
		EventID:     eventType + "-id",
		AggregateID: bookingID,
		EventType:   eventType,
		Payload:     []byte(`{}`),
	})
	require.NoError(t, err)
}

func TestRelay_ProcessBatch(t *testing.T) {
	store := memory.NewStore()
	addEvent(t, store, 7, domain.EventBookingCreated)
	addEvent(t, store, 7, domain.EventEffectPrefix+"capture_payment")

	pub := &fakePublisher{}
	relay := NewRelay(store.Outbox(), store.TxManager(), pub, (*metrics.Metrics)(nil), logger.NewNop(), RelayConfig{BatchSize: 10})

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs := pub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.EventBookingCreated, msgs[0].Topic)
	assert.Equal(t, []byte("7"), msgs[0].Key)
	assert.Equal(t, domain.EventBookingCreated, msgs[0].Headers["event_type"])
	assert.Equal(t, "booking.effect.capture_payment", msgs[1].Topic)

	for _, e := range store.OutboxEvents() {
		assert.NotNil(t, e.PublishedAt)
	}

	// повторный проход ничего не отправляет
	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.messages(), 2)
}

func TestRelay_ProcessBatch_RespectsBatchSize(t *testing.T) {
	store := memory.NewStore()
	for i := int64(1); i <= 3; i++ {
		addEvent(t, store, i, domain.EventBookingCreated)
	}

	pub := &fakePublisher{}
	relay := NewRelay(store.Outbox(), store.TxManager(), pub, (*metrics.Metrics)(nil), logger.NewNop(), RelayConfig{BatchSize: 2})

	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRelay_ProcessBatch_PublishFailureKeepsEvents(t *testing.T) {
	store := memory.NewStore()
	addEvent(t, store, 1, domain.EventBookingCreated)

	pub := &fakePublisher{err: errors.New("broker down")}
	relay := NewRelay(store.Outbox(), store.TxManager(), pub, (*metrics.Metrics)(nil), logger.NewNop(), RelayConfig{})

	_, err := relay.ProcessBatch(context.Background())
	require.Error(t, err)

	events := store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Nil(t, events[0].PublishedAt)

	pub.err = nil
	n, err := relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	addEvent(t, store, 1, domain.EventBookingCreated)

	pub := &fakePublisher{}
	relay := NewRelay(store.Outbox(), store.TxManager(), pub, (*metrics.Metrics)(nil), logger.NewNop(), RelayConfig{PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(pub.messages()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNotifier(pub, "booking.notifications", logger.NewNop())

	payload := domain.BookingEventPayload{BookingID: 42, Status: domain.StatusConfirmed}
	require.NoError(t, n.Notify(context.Background(), domain.EventBookingStatusChanged, payload))
	n.Wait()

	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "booking.notifications", msgs[0].Topic)
	assert.Equal(t, []byte("42"), msgs[0].Key)
	assert.Equal(t, domain.EventBookingStatusChanged, msgs[0].Headers["event_type"])
	assert.NotEmpty(t, msgs[0].Headers["event_id"])

	var decoded domain.BookingEventPayload
	require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
	assert.Equal(t, int64(42), decoded.BookingID)
}

func TestNotifier_FailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	n := NewNotifier(pub, "booking.notifications", logger.NewNop())

	err := n.Notify(context.Background(), domain.EventBookingCreated, domain.BookingEventPayload{BookingID: 1})
	n.Wait()

	assert.NoError(t, err)
	assert.Empty(t, pub.messages())
}

func TestToKafkaHeaders(t *testing.T) {
	h := toKafkaHeaders(map[string]string{"event_type": "x", "event_id": "y"})
	require.Len(t, h, 2)
	assert.Equal(t, "event_id", h[0].Key)
	assert.Equal(t, []byte("y"), h[0].Value)
	assert.Nil(t, toKafkaHeaders(nil))
}
