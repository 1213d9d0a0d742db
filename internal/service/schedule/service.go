package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
	"github.com/m04kA/SMC-SpaBookingService/pkg/pgerrors"
)

const defaultLockWait = 2 * time.Second

// Config параметры сервиса расписаний
type Config struct {
	// LockWait максимальное ожидание блокировки расписания мастера
	LockWait time.Duration
}

// Service сервис управления недельным расписанием и блокировками мастера
type Service struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	locker       Locker
	txManager    TransactionManager
	cfg          Config
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	locker Locker,
	txManager TransactionManager,
	cfg Config,
	logger Logger,
) *Service {
	if cfg.LockWait <= 0 {
		cfg.LockWait = defaultLockWait
	}
	return &Service{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		locker:       locker,
		txManager:    txManager,
		cfg:          cfg,
		logger:       logger,
	}
}

// GetWeek возвращает недельное расписание мастера (все 7 дней, начиная с воскресенья)
// Публичная операция: расписание нужно клиентам для выбора дня
func (s *Service) GetWeek(ctx context.Context, providerID int64) (*models.WeekResponse, error) {
	s.logger.Info("GetWeek: fetching schedule of provider=%d", providerID)

	provider, err := s.getProvider(ctx, providerID, "GetWeek")
	if err != nil {
		return nil, err
	}

	week, err := s.scheduleRepo.GetWeek(ctx, providerID)
	if err != nil {
		s.logger.Error("GetWeek: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetWeek - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWeek(provider, week), nil
}

// UpsertDay задает расписание на один день недели
// Доступно мастеру и администратору; существующие брони не затрагиваются
func (s *Service) UpsertDay(ctx context.Context, req *models.UpsertDayRequest) (*models.DayResponse, error) {
	s.logger.Info("UpsertDay: provider=%d, day=%d, working=%t by %s:%d",
		req.ProviderID, req.DayOfWeek, req.IsWorking, req.Actor.Role, req.Actor.ID)

	if !canManage(req.Actor, req.ProviderID) {
		s.logger.Warn("UpsertDay: access denied for %s:%d to provider=%d", req.Actor.Role, req.Actor.ID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	if err := validateDay(req); err != nil {
		s.logger.Warn("UpsertDay: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.getProvider(ctx, req.ProviderID, "UpsertDay"); err != nil {
		return nil, err
	}

	entry := req.ToDomain()
	if err := s.scheduleRepo.UpsertWorkingHours(ctx, entry); err != nil {
		s.logger.Error("UpsertDay: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: UpsertDay - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertDay: schedule of provider=%d updated for day=%d", req.ProviderID, req.DayOfWeek)
	day := models.FromDomainDay(entry)
	return &day, nil
}

// Block убирает интервал из записи
// Интервал не может пересекать активную бронь: сначала её нужно отменить или перенести
func (s *Service) Block(ctx context.Context, req *models.BlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("Block: provider=%d, %s - %s by %s:%d",
		req.ProviderID, req.Start, req.End, req.Actor.Role, req.Actor.ID)

	if !canManage(req.Actor, req.ProviderID) {
		s.logger.Warn("Block: access denied for %s:%d to provider=%d", req.Actor.Role, req.Actor.ID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	if err := validateBlock(req); err != nil {
		s.logger.Warn("Block: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.getProvider(ctx, req.ProviderID, "Block"); err != nil {
		return nil, err
	}

	// Блокировка расписания мастера, общая с записью и переносом броней
	unlock, err := s.locker.Lock(ctx, locker.ProviderKey(req.ProviderID), s.cfg.LockWait)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			s.logger.Warn("Block: provider=%d schedule is locked", req.ProviderID)
			return nil, ErrScheduleBusy
		}
		s.logger.Error("Block: failed to lock provider=%d schedule: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: Block - failed to acquire lock: %v", ErrInternal, err)
	}
	defer unlock()

	var block *domain.BlockedInterval
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Брони читаются с блокировкой строк (FOR UPDATE)
		booked, err := s.bookingRepo.GetBookedIntervals(txCtx, req.ProviderID, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("%w: Block - failed to get booked intervals: %w", ErrInternal, err)
		}
		for _, b := range booked {
			if b.Overlaps(req.Start, req.End) {
				s.logger.Warn("Block: interval overlaps booking id=%d of provider=%d", b.BookingID, req.ProviderID)
				return ErrBlockOverlapsBooking
			}
		}

		created, err := s.scheduleRepo.CreateBlockedInterval(txCtx, &domain.BlockedInterval{
			ProviderID: req.ProviderID,
			Start:      req.Start.UTC(),
			End:        req.End.UTC(),
			Reason:     req.Reason,
		})
		if err != nil {
			return fmt.Errorf("%w: Block - repository error: %w", ErrInternal, err)
		}
		block = created
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBlockOverlapsBooking):
			return nil, ErrBlockOverlapsBooking
		case pgerrors.IsSerializationFailure(err):
			s.logger.Warn("Block: serialization failure for provider=%d", req.ProviderID)
			return nil, ErrScheduleBusy
		}
		s.logger.Error("Block: transaction failed for provider=%d: %v", req.ProviderID, err)
		return nil, err
	}

	s.logger.Info("Block: created block id=%d for provider=%d", block.ID, req.ProviderID)
	return models.FromDomainBlock(block), nil
}

// ListBlocks возвращает блокировки, пересекающие период
func (s *Service) ListBlocks(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error) {
	s.logger.Info("ListBlocks: provider=%d, %s - %s", req.ProviderID, req.From, req.To)

	if !canManage(req.Actor, req.ProviderID) {
		s.logger.Warn("ListBlocks: access denied for %s:%d to provider=%d", req.Actor.Role, req.Actor.ID, req.ProviderID)
		return nil, ErrAccessDenied
	}
	if !req.From.Before(req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	blocks, err := s.scheduleRepo.GetBlockedIntervals(ctx, req.ProviderID, req.From, req.To)
	if err != nil {
		s.logger.Error("ListBlocks: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: ListBlocks - repository error: %v", ErrInternal, err)
	}

	resp := &models.BlockListResponse{Blocks: make([]models.BlockResponse, 0, len(blocks))}
	for _, b := range blocks {
		resp.Blocks = append(resp.Blocks, *models.FromDomainBlock(b))
	}
	return resp, nil
}

// Unblock удаляет блокировку мастера
func (s *Service) Unblock(ctx context.Context, actor domain.Actor, providerID, blockID int64) error {
	s.logger.Info("Unblock: provider=%d, block=%d by %s:%d", providerID, blockID, actor.Role, actor.ID)

	if !canManage(actor, providerID) {
		s.logger.Warn("Unblock: access denied for %s:%d to provider=%d", actor.Role, actor.ID, providerID)
		return ErrAccessDenied
	}

	if err := s.scheduleRepo.DeleteBlockedInterval(ctx, providerID, blockID); err != nil {
		if errors.Is(err, scheduleRepo.ErrBlockNotFound) {
			s.logger.Warn("Unblock: block id=%d of provider=%d not found", blockID, providerID)
			return ErrBlockNotFound
		}
		s.logger.Error("Unblock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: Unblock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Unblock: block id=%d of provider=%d removed", blockID, providerID)
	return nil
}

func (s *Service) getProvider(ctx context.Context, providerID int64, op string) (*domain.Provider, error) {
	provider, err := s.scheduleRepo.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			s.logger.Warn("%s: provider id=%d not found", op, providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("%s: failed to get provider id=%d: %v", op, providerID, err)
		return nil, fmt.Errorf("%w: %s - failed to get provider: %v", ErrInternal, op, err)
	}
	return provider, nil
}
