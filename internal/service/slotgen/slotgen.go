// Package slotgen computes bookable slots of a single day.
// It performs no I/O and is safe for concurrent use.
package slotgen

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// Input данные для генерации слотов одного дня
type Input struct {
	Date            time.Time                 // День (учитываются только год, месяц, число)
	Location        *time.Location            // Таймзона мастера; nil = UTC
	WorkingHours    *domain.WorkingHoursEntry // Расписание на день недели Date; nil = выходной
	DurationMinutes int                       // Длительность услуги = шаг сетки
	Booked          []domain.BookedInterval   // Занятые интервалы (брони и блокировки)
	Now             time.Time
	LeadTime        time.Duration // Минимальный запас между now и началом слота
}

// Generate возвращает все слоты дня по возрастанию, включая недоступные.
// Сетка строится от начала рабочего дня с шагом DurationMinutes,
// хвост короче длительности услуги отбрасывается.
func Generate(in Input) ([]domain.Slot, error) {
	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, in.DurationMinutes)
	}

	wh := in.WorkingHours
	if wh == nil || !wh.IsWorking {
		return []domain.Slot{}, nil
	}

	if err := validateTimes(wh); err != nil {
		return nil, err
	}

	openMin := wh.StartTime.Minutes()
	closeMin := wh.EndTime.Minutes()
	if openMin >= closeMin {
		return []domain.Slot{}, nil
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := in.Date.In(loc).Date()
	earliest := in.Now.Add(in.LeadTime)

	var breakInterval *domain.BookedInterval
	if wh.HasBreak() {
		breakInterval = &domain.BookedInterval{
			Start: wallClock(y, m, d, wh.BreakStart.Minutes(), loc),
			End:   wallClock(y, m, d, wh.BreakEnd.Minutes(), loc),
		}
	}

	slots := make([]domain.Slot, 0, (closeMin-openMin)/in.DurationMinutes)
	for startMin := openMin; startMin+in.DurationMinutes <= closeMin; startMin += in.DurationMinutes {
		// Границы слота по настенным часам; начала в пропущенный при переводе часов интервал нет
		start := wallClock(y, m, d, startMin, loc)
		if start.Hour()*60+start.Minute() != startMin {
			continue
		}
		end := wallClock(y, m, d, startMin+in.DurationMinutes, loc)
		if !end.After(start) {
			continue
		}

		available := !start.Before(earliest)
		if available && breakInterval != nil && breakInterval.Overlaps(start, end) {
			available = false
		}
		if available && overlapsAny(in.Booked, start, end) {
			available = false
		}

		slots = append(slots, domain.Slot{Start: start, End: end, Available: available})
	}

	return slots, nil
}

// Find ищет слот, начинающийся ровно в start
func Find(slots []domain.Slot, start time.Time) (domain.Slot, bool) {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return s, true
		}
	}
	return domain.Slot{}, false
}

// FirstAvailable возвращает первый доступный слот
func FirstAvailable(slots []domain.Slot) (domain.Slot, bool) {
	for _, s := range slots {
		if s.Available {
			return s, true
		}
	}
	return domain.Slot{}, false
}

// Overlaps проверяет пересечение [start, end) хотя бы с одним интервалом
func Overlaps(intervals []domain.BookedInterval, start, end time.Time) bool {
	return overlapsAny(intervals, start, end)
}

func overlapsAny(intervals []domain.BookedInterval, start, end time.Time) bool {
	for _, b := range intervals {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func wallClock(y int, m time.Month, d int, minutes int, loc *time.Location) time.Time {
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, loc)
}

func validateTimes(wh *domain.WorkingHoursEntry) error {
	times := []types.TimeString{wh.StartTime, wh.EndTime}
	if wh.HasBreak() {
		times = append(times, *wh.BreakStart, *wh.BreakEnd)
	}
	for _, t := range times {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: day=%d: %v", ErrInvalidWorkingHours, wh.DayOfWeek, err)
		}
	}
	return nil
}
