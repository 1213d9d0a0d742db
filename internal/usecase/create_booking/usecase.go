package create_booking

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
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/slotgen"
	"github.com/m04kA/SMC-SpaBookingService/pkg/pgerrors"
)

// Причины конфликтов для метрик
const (
	conflictLockTimeout   = "lock_timeout"
	conflictOverlap       = "overlap"
	conflictConstraint    = "constraint"
	conflictSerialization = "serialization"
)

// UseCase use case для создания бронирования (attemptBooking)
type UseCase struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
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
	catalogRepo CatalogRepository,
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
		catalogRepo:  catalogRepo,
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

// Execute выполняет use case создания бронирования
// Запись защищена блокировкой расписания мастера, сериализуемой транзакцией
// и ограничением на пересечение интервалов в БД
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: actor=%s:%d, provider=%d, service=%d, client=%d, start=%s",
		req.Actor.Role, req.Actor.ID, req.ProviderID, req.ServiceID, req.ClientID, req.StartAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	if err := validateActor(req); err != nil {
		uc.logger.Warn("CreateBooking: actor %s:%d cannot book for client=%d at provider=%d",
			req.Actor.Role, req.Actor.ID, req.ClientID, req.ProviderID)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем мастера и услугу
	provider, err := uc.scheduleRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("CreateBooking: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.ProviderID != provider.ID {
		uc.logger.Warn("CreateBooking: service id=%d does not belong to provider id=%d", service.ID, provider.ID)
		return nil, ErrServiceNotFound
	}

	// 3. Проверяем, что начало совпадает со слотом сетки дня
	loc := provider.Location(uc.cfg.DefaultLocation)
	if err := validateHorizon(req.StartAt, now, loc, uc.cfg.MaxHorizonDays); err != nil {
		uc.logger.Warn("CreateBooking: start=%s is beyond %d days horizon", req.StartAt.Format(time.RFC3339), uc.cfg.MaxHorizonDays)
		return nil, err
	}

	workingHours, err := uc.scheduleRepo.GetWorkingHours(ctx, provider.ID, req.StartAt.In(loc).Weekday())
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get working hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
	}

	grid, err := slotgen.Generate(slotgen.Input{
		Date:            req.StartAt,
		Location:        loc,
		WorkingHours:    workingHours,
		DurationMinutes: service.DurationMinutes,
		Now:             now,
		LeadTime:        uc.cfg.LeadTime,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	if err := validateSlot(grid, req.StartAt, now, uc.cfg.LeadTime); err != nil {
		uc.logger.Warn("CreateBooking: slot %s rejected: %v", req.StartAt.Format(time.RFC3339), err)
		return nil, err
	}

	startAt := req.StartAt.In(loc)
	endAt := startAt.Add(time.Duration(service.DurationMinutes) * time.Minute)
	dayStart, dayEnd := slotgen.DayBounds(startAt, loc)

	// 4. Блокировка расписания мастера; не дождались - конфликт, без очереди
	unlock, err := uc.locker.Lock(ctx, locker.ProviderKey(provider.ID), uc.cfg.LockWait)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			uc.metrics.IncConflict(conflictLockTimeout)
			uc.logger.Warn("CreateBooking: provider=%d schedule is locked, start=%s", provider.ID, startAt.Format(time.RFC3339))
			return nil, ErrBookingConflict
		}
		uc.logger.Error("CreateBooking: failed to lock provider=%d schedule: %v", provider.ID, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer unlock()

	var (
		result         *domain.Booking
		conflictReason string
	)

	// 5. Повторная проверка и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Занятые интервалы дня с блокировкой строк (FOR UPDATE)
		booked, err := uc.bookingRepo.GetBookedIntervals(txCtx, provider.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to get booked intervals: %w", ErrInternal, err)
		}

		blocks, err := uc.scheduleRepo.GetBlockedIntervals(txCtx, provider.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to get blocked intervals: %w", ErrInternal, err)
		}

		if slotgen.Overlaps(slotgen.Busy(booked, blocks, 0), startAt, endAt) {
			conflictReason = conflictOverlap
			return ErrBookingConflict
		}

		// 5.2. Создаем бронирование с денормализацией данных услуги
		booking := &domain.Booking{
			ProviderID:      provider.ID,
			ClientID:        req.ClientID,
			ServiceID:       service.ID,
			StartAt:         startAt,
			EndAt:           endAt,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusPending,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
			Notes:           req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				conflictReason = conflictConstraint
				return ErrBookingConflict
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 5.3. История и outbox в той же транзакции
		if err := uc.historyRepo.Append(txCtx, &domain.BookingHistoryEntry{
			BookingID: created.ID,
			ActorID:   req.Actor.ID,
			ActorRole: req.Actor.Role,
			Action:    domain.ActionCreated,
			NewStatus: created.Status,
		}); err != nil {
			return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(domain.NewBookingEventPayload(created, req.Actor, nil, nil, now))
		if err != nil {
			return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
		}

		if err := uc.outboxRepo.Add(txCtx, &domain.OutboxEvent{
			EventID:     uuid.NewString(),
			AggregateID: created.ID,
			EventType:   domain.EventBookingCreated,
			Payload:     payload,
		}); err != nil {
			return fmt.Errorf("%w: failed to add outbox event: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrBookingConflict):
			uc.metrics.IncConflict(conflictReason)
			uc.logger.Warn("CreateBooking: slot %s of provider=%d is taken (%s)", startAt.Format(time.RFC3339), provider.ID, conflictReason)
			return nil, ErrBookingConflict
		case pgerrors.IsSerializationFailure(err):
			uc.metrics.IncConflict(conflictSerialization)
			uc.logger.Warn("CreateBooking: serialization failure for provider=%d, start=%s", provider.ID, startAt.Format(time.RFC3339))
			return nil, ErrBookingConflict
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.metrics.IncCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	// 6. Уведомление после коммита; ошибка не отменяет бронь
	if uc.notifier != nil {
		payload := domain.NewBookingEventPayload(result, req.Actor, nil, nil, now)
		if err := uc.notifier.Notify(ctx, domain.EventBookingCreated, payload); err != nil {
			uc.logger.Warn("CreateBooking: failed to notify about booking id=%d: %v", result.ID, err)
		}
	}

	return &Response{Booking: result}, nil
}
