package reschedule_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/slotgen"
	"github.com/m04kA/SMC-SpaBookingService/pkg/pgerrors"
)

const (
	conflictLockTimeout   = "lock_timeout"
	conflictOverlap       = "overlap"
	conflictConstraint    = "constraint"
	conflictSerialization = "serialization"
)

// UseCase use case переноса бронирования на другой слот
type UseCase struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	historyRepo  HistoryRepository
	outboxRepo   OutboxRepository
	locker       Locker
	txManager    TransactionManager
	notifier     Notifier
	metrics      MetricsCollector
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	historyRepo HistoryRepository,
	outboxRepo OutboxRepository,
	locker Locker,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsCollector,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &UseCase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		historyRepo:  historyRepo,
		outboxRepo:   outboxRepo,
		locker:       locker,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute переносит бронь; собственный интервал брони не считается занятым
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, new_start=%s, actor=%s:%d",
		req.BookingID, req.NewStartAt.Format(time.RFC3339), req.Actor.Role, req.Actor.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Предварительная проверка брони без блокировок
	current, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if err := uc.validateBooking(current, req, now); err != nil {
		uc.logger.Warn("RescheduleBooking: booking id=%d rejected: %v", req.BookingID, err)
		return nil, err
	}

	provider, err := uc.scheduleRepo.GetProvider(ctx, current.ProviderID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("RescheduleBooking: provider id=%d not found", current.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get provider id=%d: %v", current.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Новое начало должно совпадать со слотом сетки
	loc := provider.Location(uc.cfg.DefaultLocation)
	if err := validateWindow(req.NewStartAt, now, loc, uc.cfg.WindowDays); err != nil {
		uc.logger.Warn("RescheduleBooking: new start=%s is beyond %d days window", req.NewStartAt.Format(time.RFC3339), uc.cfg.WindowDays)
		return nil, err
	}

	workingHours, err := uc.scheduleRepo.GetWorkingHours(ctx, provider.ID, req.NewStartAt.In(loc).Weekday())
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get working hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	grid, err := slotgen.Generate(slotgen.Input{
		Date:            req.NewStartAt,
		Location:        loc,
		WorkingHours:    workingHours,
		DurationMinutes: current.DurationMinutes,
		Now:             now,
		LeadTime:        uc.cfg.LeadTime,
	})
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	if err := validateSlot(grid, req.NewStartAt, now, uc.cfg.LeadTime); err != nil {
		uc.logger.Warn("RescheduleBooking: slot %s rejected: %v", req.NewStartAt.Format(time.RFC3339), err)
		return nil, err
	}

	newStart := req.NewStartAt.In(loc)
	newEnd := newStart.Add(time.Duration(current.DurationMinutes) * time.Minute)
	dayStart, dayEnd := slotgen.DayBounds(newStart, loc)

	// 4. Блокировка расписания мастера
	unlock, err := uc.locker.Lock(ctx, locker.ProviderKey(provider.ID), uc.cfg.LockWait)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			uc.metrics.IncConflict(conflictLockTimeout)
			uc.logger.Warn("RescheduleBooking: provider=%d schedule is locked", provider.ID)
			return nil, ErrBookingConflict
		}
		uc.logger.Error("RescheduleBooking: failed to lock provider=%d schedule: %v", provider.ID, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer unlock()

	var (
		result         *domain.Booking
		previousAt     time.Time
		conflictReason string
	)

	// 5. Повторная проверка и перенос в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// Бронь могли изменить между проверкой и блокировкой
		if err := uc.validateBooking(b, req, now); err != nil {
			return err
		}

		booked, err := uc.bookingRepo.GetBookedIntervals(txCtx, provider.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to get booked intervals: %w", ErrInternal, err)
		}

		blocks, err := uc.scheduleRepo.GetBlockedIntervals(txCtx, provider.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to get blocked intervals: %w", ErrInternal, err)
		}

		if slotgen.Overlaps(slotgen.Busy(booked, blocks, b.ID), newStart, newEnd) {
			conflictReason = conflictOverlap
			return ErrBookingConflict
		}

		previousAt = b.StartAt
		b.StartAt = newStart
		b.EndAt = newEnd
		switch req.Actor.Role {
		case domain.RoleClient:
			b.ClientReschedules++
		case domain.RoleProvider:
			b.ProviderReschedules++
		}

		if err := uc.bookingRepo.Reschedule(txCtx, b); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				conflictReason = conflictConstraint
				return ErrBookingConflict
			}
			return fmt.Errorf("%w: failed to reschedule booking: %w", ErrInternal, err)
		}

		details := fmt.Sprintf("%s -> %s", previousAt.Format(time.RFC3339), newStart.Format(time.RFC3339))
		if err := uc.historyRepo.Append(txCtx, &domain.BookingHistoryEntry{
			BookingID: b.ID,
			ActorID:   req.Actor.ID,
			ActorRole: req.Actor.Role,
			Action:    domain.ActionRescheduled,
			NewStatus: b.Status,
			Reason:    req.Reason,
			Details:   &details,
		}); err != nil {
			return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(domain.NewBookingEventPayload(b, req.Actor, nil, req.Reason, now))
		if err != nil {
			return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
		}

		if err := uc.outboxRepo.Add(txCtx, &domain.OutboxEvent{
			EventID:     uuid.NewString(),
			AggregateID: b.ID,
			EventType:   domain.EventBookingRescheduled,
			Payload:     payload,
		}); err != nil {
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}

		result = b
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingConflict):
			uc.metrics.IncConflict(conflictReason)
			uc.logger.Warn("RescheduleBooking: slot %s of provider=%d is taken (%s)", newStart.Format(time.RFC3339), provider.ID, conflictReason)
			return nil, ErrBookingConflict
		case pgerrors.IsSerializationFailure(err):
			uc.metrics.IncConflict(conflictSerialization)
			uc.logger.Warn("RescheduleBooking: serialization failure for booking id=%d", req.BookingID)
			return nil, ErrBookingConflict
		case errors.Is(err, ErrInternal):
			uc.logger.Error("RescheduleBooking: transaction failed for booking id=%d: %v", req.BookingID, err)
		default:
			uc.logger.Warn("RescheduleBooking: booking id=%d rejected: %v", req.BookingID, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved %s -> %s",
		result.ID, previousAt.Format(time.RFC3339), result.StartAt.Format(time.RFC3339))

	if uc.notifier != nil {
		payload := domain.NewBookingEventPayload(result, req.Actor, nil, req.Reason, now)
		if err := uc.notifier.Notify(ctx, domain.EventBookingRescheduled, payload); err != nil {
			uc.logger.Warn("RescheduleBooking: failed to notify about booking id=%d: %v", result.ID, err)
		}
	}

	return &Response{
		Booking:    result,
		PreviousAt: previousAt,
		Remaining:  uc.remaining(result, req.Actor.Role),
	}, nil
}
