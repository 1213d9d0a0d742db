package transition_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SpaBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-SpaBookingService/pkg/pgerrors"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
)

// UseCase use case смены статуса бронирования (transition)
type UseCase struct {
	bookingRepo  BookingRepository
	statsRepo    StatsRepository
	historyRepo  HistoryRepository
	outboxRepo   OutboxRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      MetricsCollector
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	statsRepo StatsRepository,
	historyRepo HistoryRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsCollector,
	cfg Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		statsRepo:    statsRepo,
		historyRepo:  historyRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет переход статуса
// Статус, эффекты, outbox и история пишутся одной транзакцией: либо всё, либо ничего
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("TransitionBooking: booking=%d, target=%s, actor=%s:%d",
		req.BookingID, req.Target, req.Actor.Role, req.Actor.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		booking *domain.Booking
		result  *lifecycle.Result
		fee     *float64
	)

	// 2. Всё изменение в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем строку брони (FOR UPDATE)
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		if !b.IsParticipant(req.Actor) {
			return ErrAccessDenied
		}

		// 2.2. Проверка перехода по таблице
		res, err := lifecycle.Transition(b.Status, req.Target, req.Actor.Role)
		if err != nil {
			return err
		}

		// Отмена ограничена временем до начала и облагается штрафом
		var cancellationFee *float64
		if res.To == domain.StatusCancelled {
			if err := uc.validateCancelNotice(b, req.Actor.Role, now); err != nil {
				return err
			}
			amount := domain.CancellationFee(b, req.Actor.Role, now)
			cancellationFee = &amount
		}

		// 2.3. Новый статус и отметки времени
		applyStatus(b, res.To, req.Actor, req.Reason, now)
		if err := uc.bookingRepo.UpdateStatus(txCtx, b); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to update status: %w", ErrInternal, err)
		}

		event := domain.NewBookingEventPayload(b, req.Actor, &res.From, req.Reason, now)
		event.CancellationFee = cancellationFee
		payload, err := encodePayload(event)
		if err != nil {
			return err
		}

		// 2.4. Эффекты и событие смены статуса
		if err := uc.applyEffects(txCtx, b, res, payload, now); err != nil {
			return err
		}
		if err := uc.addEvent(txCtx, b.ID, domain.EventBookingStatusChanged, payload); err != nil {
			return err
		}

		// 2.5. История
		if err := uc.historyRepo.Append(txCtx, &domain.BookingHistoryEntry{
			BookingID:      b.ID,
			ActorID:        req.Actor.ID,
			ActorRole:      req.Actor.Role,
			Action:         domain.ActionStatusChanged,
			PreviousStatus: &res.From,
			NewStatus:      res.To,
			Reason:         req.Reason,
		}); err != nil {
			return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
		}

		booking = b
		result = res
		fee = cancellationFee
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
		case errors.Is(err, ErrAccessDenied):
			uc.logger.Warn("TransitionBooking: actor %s:%d is not a participant of booking id=%d",
				req.Actor.Role, req.Actor.ID, req.BookingID)
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrActorNotAllowed), errors.Is(err, ErrTooLateToCancel):
			uc.logger.Warn("TransitionBooking: booking id=%d: %v", req.BookingID, err)
		case pgerrors.IsSerializationFailure(err):
			uc.logger.Warn("TransitionBooking: booking id=%d was modified concurrently", req.BookingID)
			return nil, ErrConcurrentUpdate
		default:
			uc.logger.Error("TransitionBooking: transaction failed for booking id=%d: %v", req.BookingID, err)
		}
		return nil, err
	}

	uc.metrics.IncTransition(string(result.From), string(result.To))
	uc.logger.Info("TransitionBooking: booking id=%d %s -> %s, effects=%v",
		booking.ID, result.From, result.To, result.Effects)

	// 3. Уведомление после коммита; ошибка только логируется
	if uc.notifier != nil {
		payload := domain.NewBookingEventPayload(booking, req.Actor, &result.From, req.Reason, now)
		payload.CancellationFee = fee
		if err := uc.notifier.Notify(ctx, domain.EventBookingStatusChanged, payload); err != nil {
			uc.logger.Warn("TransitionBooking: failed to notify about booking id=%d: %v", booking.ID, err)
		}
	}

	return &Response{Booking: booking, From: result.From, Effects: result.Effects, CancellationFee: ptr.Deref(fee, 0)}, nil
}
