package memory

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// ErrInvalidSeed возвращается, когда файл начальных данных некорректен
var ErrInvalidSeed = errors.New("memory: invalid seed file")

// Seed начальные данные для запуска с storage.driver = "memory"
type Seed struct {
	Providers []SeedProvider `toml:"providers"`
}

type SeedProvider struct {
	ID           int64         `toml:"id"`
	Name         string        `toml:"name"`
	Timezone     string        `toml:"timezone"`
	Services     []SeedService `toml:"services"`
	WorkingHours []SeedDay     `toml:"working_hours"`
}

type SeedService struct {
	ID              int64   `toml:"id"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	Price           float64 `toml:"price"`
}

type SeedDay struct {
	DayOfWeek  int    `toml:"day_of_week"`
	Start      string `toml:"start"`
	End        string `toml:"end"`
	BreakStart string `toml:"break_start"`
	BreakEnd   string `toml:"break_end"`
}

// LoadSeed читает начальные данные из TOML файла и применяет их к хранилищу
func (s *Store) LoadSeed(path string) error {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSeed, path, err)
	}
	return s.ApplySeed(&seed)
}

// ApplySeed добавляет мастеров, их услуги и расписание
func (s *Store) ApplySeed(seed *Seed) error {
	for _, p := range seed.Providers {
		s.AddProvider(domain.Provider{ID: p.ID, Name: p.Name, Timezone: p.Timezone, IsActive: true})

		for _, svc := range p.Services {
			s.AddService(domain.Service{
				ID:              svc.ID,
				ProviderID:      p.ID,
				Name:            svc.Name,
				DurationMinutes: svc.DurationMinutes,
				Price:           svc.Price,
				IsActive:        true,
			})
		}

		for _, d := range p.WorkingHours {
			entry, err := seedDay(p.ID, d)
			if err != nil {
				return err
			}
			s.SetWorkingHours(*entry)
		}
	}
	return nil
}

func seedDay(providerID int64, d SeedDay) (*domain.WorkingHoursEntry, error) {
	if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: provider=%d: day_of_week %d", ErrInvalidSeed, providerID, d.DayOfWeek)
	}

	start, err := types.NewTimeStringFromString(d.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: provider=%d: start: %v", ErrInvalidSeed, providerID, err)
	}
	end, err := types.NewTimeStringFromString(d.End)
	if err != nil {
		return nil, fmt.Errorf("%w: provider=%d: end: %v", ErrInvalidSeed, providerID, err)
	}

	entry := &domain.WorkingHoursEntry{
		ProviderID: providerID,
		DayOfWeek:  time.Weekday(d.DayOfWeek),
		IsWorking:  true,
		StartTime:  start,
		EndTime:    end,
	}

	if d.BreakStart != "" && d.BreakEnd != "" {
		bs, err := types.NewTimeStringFromString(d.BreakStart)
		if err != nil {
			return nil, fmt.Errorf("%w: provider=%d: break_start: %v", ErrInvalidSeed, providerID, err)
		}
		be, err := types.NewTimeStringFromString(d.BreakEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: provider=%d: break_end: %v", ErrInvalidSeed, providerID, err)
		}
		entry.BreakStart = &bs
		entry.BreakEnd = &be
	}

	return entry, nil
}
