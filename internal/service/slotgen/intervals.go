package slotgen

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// DayBounds возвращает [начало дня, начало следующего дня) в таймзоне loc
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Busy объединяет брони и блокировки мастера в один отсортированный список занятых интервалов
// Интервал брони exceptBookingID пропускается (перенос брони не конфликтует сам с собой)
func Busy(booked []domain.BookedInterval, blocks []*domain.BlockedInterval, exceptBookingID int64) []domain.BookedInterval {
	res := make([]domain.BookedInterval, 0, len(booked)+len(blocks))
	for _, b := range booked {
		if exceptBookingID != 0 && b.BookingID == exceptBookingID {
			continue
		}
		res = append(res, b)
	}
	for _, bl := range blocks {
		res = append(res, domain.BookedInterval{Start: bl.Start, End: bl.End})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Start.Before(res[j].Start) })
	return res
}
