package get_availability

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

// UseCase use case для получения доступных слотов мастера по диапазону дат
type UseCase struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	bookingRepo  BookingRepository
	cfg          Config
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
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

// Execute выполняет use case получения доступности
// Результат зависит только от входных данных, текущего времени и сохранённых броней
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: provider=%d, service=%d, from=%s, to=%s",
		req.ProviderID, req.ServiceID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем мастера
	provider, err := uc.scheduleRepo.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrProviderNotFound) {
			uc.logger.Warn("GetAvailability: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailability: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Получаем услугу (длительность = шаг сетки)
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.ProviderID != provider.ID {
		uc.logger.Warn("GetAvailability: service id=%d does not belong to provider id=%d", service.ID, provider.ID)
		return nil, ErrServiceNotFound
	}

	// 4. Ограничиваем диапазон в таймзоне мастера
	loc := provider.Location(uc.cfg.DefaultLocation)
	today := dateOf(now.In(loc), loc)
	from, to := clampRange(dateOf(req.From, loc), dateOf(req.To, loc), today, uc.cfg.MaxHorizonDays)

	resp := &Response{
		ProviderID:      provider.ID,
		ServiceID:       service.ID,
		DurationMinutes: service.DurationMinutes,
		Timezone:        loc.String(),
		From:            from,
		To:              to,
		Days:            []domain.DaySlots{},
	}

	if to.Before(from) {
		uc.logger.Info("GetAvailability: requested range is in the past for provider=%d", provider.ID)
		return resp, nil
	}

	// 5. Занятые интервалы на весь диапазон: брони и блокировки
	rangeStart, _ := slotgen.DayBounds(from, loc)
	_, rangeEnd := slotgen.DayBounds(to, loc)

	booked, err := uc.bookingRepo.GetBookedIntervals(ctx, provider.ID, rangeStart, rangeEnd)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get booked intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to get booked intervals: %v", ErrInternal, err)
	}

	blocks, err := uc.scheduleRepo.GetBlockedIntervals(ctx, provider.ID, rangeStart, rangeEnd)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get blocked intervals: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocked intervals: %v", ErrInternal, err)
	}

	busy := slotgen.Busy(booked, blocks, 0)

	// 6. Генерируем слоты по дням
	week := make(map[time.Weekday]*domain.WorkingHoursEntry, 7)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		wh, ok := week[day.Weekday()]
		if !ok {
			wh, err = uc.scheduleRepo.GetWorkingHours(ctx, provider.ID, day.Weekday())
			if err != nil {
				uc.logger.Error("GetAvailability: failed to get working hours for %s: %v", day.Weekday(), err)
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
			uc.logger.Error("GetAvailability: failed to generate slots for %s: %v", day.Format(domain.DateFormat), err)
			return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
		}

		// Нерабочие дни не попадают в ответ
		if len(slots) == 0 {
			continue
		}
		resp.Days = append(resp.Days, domain.DaySlots{Date: day, Slots: slots})
	}

	uc.logger.Info("GetAvailability: provider=%d, service=%d: %d working days in [%s, %s]",
		provider.ID, service.ID, len(resp.Days), from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	return resp, nil
}
