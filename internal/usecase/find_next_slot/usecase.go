package find_next_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/slotgen"
)

// UseCase поиск ближайшего свободного слота мастера
type UseCase struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	bookingRepo  BookingRepository
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	bookingRepo BookingRepository,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.MaxHorizonDays <= 0 {
		cfg.MaxHorizonDays = domain.DefaultMaxHorizonDays
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	return &UseCase{
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		bookingRepo:  bookingRepo,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindNextSlot: provider=%d, service=%d, from=%s",
		req.ProviderID, req.ServiceID, req.From.Format(domain.DateFormat))

	if req.ProviderID <= 0 || req.ServiceID <= 0 {
		uc.logger.Warn("FindNextSlot: invalid ids provider=%d service=%d", req.ProviderID, req.ServiceID)
		return nil, fmt.Errorf("%w: providerID and serviceID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	provider, err := uc.scheduleRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("FindNextSlot: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("FindNextSlot: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("FindNextSlot: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("FindNextSlot: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.ProviderID != provider.ID {
		uc.logger.Warn("FindNextSlot: service id=%d does not belong to provider id=%d", service.ID, provider.ID)
		return nil, ErrServiceNotFound
	}

	// Диапазон поиска: [max(from, сегодня), сегодня + горизонт)
	loc := provider.Location(uc.cfg.DefaultLocation)
	today, _ := slotgen.DayBounds(now, loc)
	from := today
	if !req.From.IsZero() {
		y, m, d := req.From.Date()
		if day := time.Date(y, m, d, 0, 0, 0, 0, loc); day.After(today) {
			from = day
		}
	}
	end := today.AddDate(0, 0, uc.cfg.MaxHorizonDays)
	if !from.Before(end) {
		return nil, ErrNoAvailableSlot
	}

	booked, err := uc.bookingRepo.GetBookedIntervals(ctx, provider.ID, from, end)
	if err != nil {
		uc.logger.Error("FindNextSlot: failed to get booked intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to get booked intervals: %v", ErrInternal, err)
	}
	blocks, err := uc.scheduleRepo.GetBlockedIntervals(ctx, provider.ID, from, end)
	if err != nil {
		uc.logger.Error("FindNextSlot: failed to get blocked intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocked intervals: %v", ErrInternal, err)
	}
	busy := slotgen.Busy(booked, blocks, 0)

	week := make(map[time.Weekday]*domain.WorkingHoursEntry, 7)
	for day := from; day.Before(end); day = day.AddDate(0, 0, 1) {
		wh, ok := week[day.Weekday()]
		if !ok {
			wh, err = uc.scheduleRepo.GetWorkingHours(ctx, provider.ID, day.Weekday())
			if err != nil {
				uc.logger.Error("FindNextSlot: failed to get working hours for %s: %v", day.Weekday(), err)
				return nil, fmt.Errorf("%w: failed to get working hours: %v", ErrInternal, err)
			}
			week[day.Weekday()] = wh
		}

		slots, err := slotgen.Generate(slotgen.Input{
			Date:            day,
			Location:        loc,
			WorkingHours:    wh,
			DurationMinutes: service.DurationMinutes,
			Booked:          busy,
			Now:             now,
			LeadTime:        uc.cfg.LeadTime,
		})
		if err != nil {
			uc.logger.Error("FindNextSlot: failed to generate slots for %s: %v", day.Format(domain.DateFormat), err)
			return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
		}

		if slot, ok := slotgen.FirstAvailable(slots); ok {
			uc.logger.Info("FindNextSlot: provider=%d next slot %s", provider.ID, slot.Start.Format(time.RFC3339))
			return &Response{
				ProviderID: provider.ID,
				ServiceID:  service.ID,
				Timezone:   loc.String(),
				Slot:       slot,
			}, nil
		}
	}

	uc.logger.Info("FindNextSlot: provider=%d has no free slots until %s", provider.ID, end.Format(domain.DateFormat))
	return nil, ErrNoAvailableSlot
}
