package transition_booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SpaBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type stubNotifier struct {
	events []string
	err    error
}

func (n *stubNotifier) Notify(_ context.Context, eventType string, _ domain.BookingEventPayload) error {
	n.events = append(n.events, eventType)
	return n.err
}

type failingStats struct {
	StatsRepository
}

func (failingStats) ApplyCompletion(context.Context, int64, time.Time) error {
	return errors.New("stats table is locked")
}

const (
	providerID = int64(1)
	clientID   = int64(100)
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	provider = domain.Actor{ID: providerID, Role: domain.RoleProvider}
	client   = domain.Actor{ID: clientID, Role: domain.RoleClient}
	admin    = domain.Actor{ID: 999, Role: domain.RoleAdmin}
)

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	notifier *stubNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	notifier := &stubNotifier{}
	uc := NewUseCase(store.Bookings(), store.Stats(), store.History(), store.Outbox(), store.TxManager(),
		notifier, (*metrics.Metrics)(nil),
		Config{MinClientCancelNotice: 2 * time.Hour, MinProviderCancelNotice: time.Hour},
		logger.NewNop())
	uc.timeProvider = fixedTime{now: testNow}

	return &fixture{uc: uc, store: store, notifier: notifier}
}

func (f *fixture) addBooking(t *testing.T, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	b, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		ProviderID:      providerID,
		ClientID:        clientID,
		ServiceID:       10,
		StartAt:         start,
		EndAt:           start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          status,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) addBookingAt(t *testing.T, start time.Time, price float64) *domain.Booking {
	t.Helper()
	b, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		ProviderID:      providerID,
		ClientID:        clientID,
		ServiceID:       10,
		StartAt:         start,
		EndAt:           start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		ServicePrice:    price,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) status(t *testing.T, id int64) domain.BookingStatus {
	t.Helper()
	b, err := f.store.Bookings().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

func eventTypes(events []domain.OutboxEvent) []string {
	res := make([]string, 0, len(events))
	for _, e := range events {
		res = append(res, e.EventType)
	}
	return res
}

func TestExecute_ProviderConfirms(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: provider})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, domain.StatusPending, resp.From)
	assert.Equal(t, []lifecycle.Effect{lifecycle.EffectCapturePayment, lifecycle.EffectAddToCalendar}, resp.Effects)
	require.NotNil(t, resp.Booking.ConfirmedAt)
	assert.Equal(t, testNow, *resp.Booking.ConfirmedAt)

	assert.Equal(t, domain.StatusConfirmed, f.status(t, b.ID))
	assert.Equal(t, []string{
		"booking.effect.capture_payment",
		"booking.effect.add_to_calendar",
		domain.EventBookingStatusChanged,
	}, eventTypes(f.store.OutboxEvents()))

	history, err := f.store.History().ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionStatusChanged, history[0].Action)
	assert.Equal(t, domain.StatusPending, *history[0].PreviousStatus)
	assert.Equal(t, domain.StatusConfirmed, history[0].NewStatus)

	assert.Equal(t, []string{domain.EventBookingStatusChanged}, f.notifier.events)
}

func TestExecute_CompletedToConfirmedIsRejected(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusCompleted)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: admin})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, domain.StatusCompleted, f.status(t, b.ID))
	assert.Empty(t, f.store.OutboxEvents())
	assert.Empty(t, f.notifier.events)
}

func TestExecute_ActorRules(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusPending)
	ctx := context.Background()

	// клиент не подтверждает бронь
	_, err := f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: client})
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	// чужой мастер
	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: domain.Actor{ID: 2, Role: domain.RoleProvider}})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// чужой клиент
	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusCancelled, Actor: domain.Actor{ID: 101, Role: domain.RoleClient}})
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Equal(t, domain.StatusPending, f.status(t, b.ID))

	// администратор может любой легальный переход
	_, err = f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: admin})
	assert.NoError(t, err)
}

func TestExecute_ClientCancelReleasesSlot(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusConfirmed)

	resp, err := f.uc.Execute(context.Background(), &Request{
		BookingID: b.ID,
		Target:    domain.StatusCancelled,
		Actor:     client,
		Reason:    ptr.Ptr("plans changed"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
	require.NotNil(t, resp.Booking.CancelledBy)
	assert.Equal(t, domain.RoleClient, *resp.Booking.CancelledBy)
	assert.Equal(t, "plans changed", *resp.Booking.CancellationReason)

	booked, err := f.store.Bookings().GetBookedIntervals(context.Background(), providerID, b.StartAt.Add(-time.Hour), b.EndAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, booked)

	assert.Equal(t, 1, f.store.ProviderStats(providerID).CancelledCount)
	assert.Contains(t, eventTypes(f.store.OutboxEvents()), "booking.effect.refund_payment")
	assert.Contains(t, eventTypes(f.store.OutboxEvents()), "booking.effect.remove_from_calendar")
}

func TestExecute_FullLifecycleUpdatesStats(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusPending)
	ctx := context.Background()

	for _, target := range []domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress, domain.StatusCompleted} {
		_, err := f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: target, Actor: provider})
		require.NoError(t, err, "transition to %s", target)
	}

	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)

	stats := f.store.ProviderStats(providerID)
	assert.Equal(t, 1, stats.CompletedCount)
	require.NotNil(t, stats.LastCompletedAt)
	assert.Equal(t, testNow, *stats.LastCompletedAt)

	history, err := f.store.History().ListByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestExecute_NoShowAppliesPenalty(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusNoShow, Actor: provider})
	require.NoError(t, err)

	rel := f.store.ClientReliability(clientID)
	assert.Equal(t, 1, rel.NoShowCount)
	assert.Equal(t, 90, rel.ReliabilityScore)
	assert.Equal(t, 1, f.store.ProviderStats(providerID).NoShowCount)
}

func TestExecute_EffectFailureRollsBack(t *testing.T) {
	f := setup(t)
	b := f.addBooking(t, domain.StatusInProgress)
	f.uc.statsRepo = failingStats{StatsRepository: f.store.Stats()}

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusCompleted, Actor: provider})
	require.ErrorIs(t, err, ErrInternal)

	assert.Equal(t, domain.StatusInProgress, f.status(t, b.ID))
	assert.Empty(t, f.store.OutboxEvents())
	assert.Zero(t, f.store.ProviderStats(providerID).CompletedCount)

	history, err := f.store.History().ListByBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_NotifierFailureKeepsTransition(t *testing.T) {
	f := setup(t)
	f.notifier.err = errors.New("broker down")
	b := f.addBooking(t, domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusConfirmed, Actor: provider})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, f.status(t, b.ID))
}

func TestExecute_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{BookingID: 42, Target: domain.StatusConfirmed, Actor: admin})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.uc.Execute(ctx, &Request{BookingID: 1, Target: "archived", Actor: admin})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(ctx, &Request{BookingID: 1, Target: domain.StatusConfirmed, Actor: domain.Actor{ID: 1, Role: "guest"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_CancelNoticeByRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// до начала 90 минут: клиенту поздно, мастеру ещё можно
	b := f.addBookingAt(t, testNow.Add(90*time.Minute), 2000)

	_, err := f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusCancelled, Actor: client})
	require.ErrorIs(t, err, ErrTooLateToCancel)
	assert.Equal(t, domain.StatusConfirmed, f.status(t, b.ID))
	assert.Empty(t, f.store.OutboxEvents())

	resp, err := f.uc.Execute(ctx, &Request{BookingID: b.ID, Target: domain.StatusCancelled, Actor: provider})
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, resp.CancellationFee, 0.001)

	// за 30 минут не может отменить и мастер
	late := f.addBookingAt(t, testNow.Add(30*time.Minute), 2000)
	_, err = f.uc.Execute(ctx, &Request{BookingID: late.ID, Target: domain.StatusCancelled, Actor: provider})
	assert.ErrorIs(t, err, ErrTooLateToCancel)

	_, err = f.uc.Execute(ctx, &Request{BookingID: late.ID, Target: domain.StatusCancelled, Actor: admin})
	assert.NoError(t, err)
}

func TestExecute_CancellationFeeInRefundPayload(t *testing.T) {
	f := setup(t)
	b := f.addBookingAt(t, testNow.Add(10*time.Hour), 2000)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusCancelled, Actor: client})
	require.NoError(t, err)
	assert.InDelta(t, 400.0, resp.CancellationFee, 0.001)

	var refund *domain.OutboxEvent
	for _, e := range f.store.OutboxEvents() {
		if e.EventType == "booking.effect.refund_payment" {
			e := e
			refund = &e
		}
	}
	require.NotNil(t, refund)

	var payload domain.BookingEventPayload
	require.NoError(t, json.Unmarshal(refund.Payload, &payload))
	require.NotNil(t, payload.CancellationFee)
	assert.InDelta(t, 400.0, *payload.CancellationFee, 0.001)
}

func TestExecute_CancelADayAheadIsFree(t *testing.T) {
	f := setup(t)
	b := f.addBookingAt(t, testNow.Add(30*time.Hour), 2000)

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Target: domain.StatusCancelled, Actor: client})
	require.NoError(t, err)
	assert.Zero(t, resp.CancellationFee)
}
