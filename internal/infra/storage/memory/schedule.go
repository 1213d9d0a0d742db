package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
)

// ScheduleRepository in-memory аналог schedule.Repository
type ScheduleRepository struct {
	s *Store
}

func (r *ScheduleRepository) GetProvider(ctx context.Context, providerID int64) (*domain.Provider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.providers[providerID]
	if !ok || !p.IsActive {
		return nil, scheduleRepo.ErrProviderNotFound
	}
	return &p, nil
}

func (r *ScheduleRepository) GetWorkingHours(ctx context.Context, providerID int64, day time.Weekday) (*domain.WorkingHoursEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.data.workingHours[providerID][day]
	if !ok {
		return domain.NonWorkingDay(providerID, day), nil
	}
	return &entry, nil
}

func (r *ScheduleRepository) GetWeek(ctx context.Context, providerID int64) ([]*domain.WorkingHoursEntry, error) {
	week := make([]*domain.WorkingHoursEntry, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		entry, err := r.GetWorkingHours(ctx, providerID, day)
		if err != nil {
			return nil, err
		}
		week[day] = entry
	}
	return week, nil
}

func (r *ScheduleRepository) UpsertWorkingHours(ctx context.Context, entry *domain.WorkingHoursEntry) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	r.s.setWorkingHoursLocked(*entry)
	return nil
}

func (r *ScheduleRepository) CreateBlockedInterval(ctx context.Context, block *domain.BlockedInterval) (*domain.BlockedInterval, error) {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	r.s.data.blockSeq++
	block.ID = r.s.data.blockSeq
	block.CreatedAt = r.s.now()
	r.s.data.blocks[block.ID] = *block

	return block, nil
}

func (r *ScheduleRepository) DeleteBlockedInterval(ctx context.Context, providerID, blockID int64) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	b, ok := r.s.data.blocks[blockID]
	if !ok || b.ProviderID != providerID {
		return scheduleRepo.ErrBlockNotFound
	}
	delete(r.s.data.blocks, blockID)
	return nil
}

func (r *ScheduleRepository) GetBlockedIntervals(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.BlockedInterval, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.BlockedInterval, 0)
	for _, b := range r.s.data.blocks {
		if b.ProviderID == providerID && b.Start.Before(to) && b.End.After(from) {
			b := b
			res = append(res, &b)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Start.Before(res[j].Start) })
	return res, nil
}

// CatalogRepository in-memory аналог catalog.Repository
type CatalogRepository struct {
	s *Store
}

func (r *CatalogRepository) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	svc, ok := r.s.data.services[serviceID]
	if !ok || !svc.IsActive {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return &svc, nil
}
