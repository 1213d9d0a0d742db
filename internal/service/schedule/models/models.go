package models

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// Request модели

// UpsertDayRequest запрос на изменение расписания одного дня недели
type UpsertDayRequest struct {
	Actor      domain.Actor
	ProviderID int64
	DayOfWeek  time.Weekday
	IsWorking  bool
	StartTime  types.TimeString
	EndTime    types.TimeString
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString
}

// ToDomain конвертирует запрос в запись расписания
func (r *UpsertDayRequest) ToDomain() *domain.WorkingHoursEntry {
	entry := &domain.WorkingHoursEntry{
		ProviderID: r.ProviderID,
		DayOfWeek:  r.DayOfWeek,
		IsWorking:  r.IsWorking,
	}
	if r.IsWorking {
		entry.StartTime = r.StartTime
		entry.EndTime = r.EndTime
		entry.BreakStart = r.BreakStart
		entry.BreakEnd = r.BreakEnd
	}
	return entry
}

// BlockRequest запрос на блокировку времени мастера
type BlockRequest struct {
	Actor      domain.Actor
	ProviderID int64
	Start      time.Time
	End        time.Time
	Reason     *string
}

// ListBlocksRequest запрос на получение блокировок за период
type ListBlocksRequest struct {
	Actor      domain.Actor
	ProviderID int64
	From       time.Time
	To         time.Time
}

// Response модели

// DayResponse расписание одного дня недели
type DayResponse struct {
	DayOfWeek  int     `json:"dayOfWeek"`
	IsWorking  bool    `json:"isWorking"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

// WeekResponse недельное расписание мастера
type WeekResponse struct {
	ProviderID int64         `json:"providerId"`
	Timezone   string        `json:"timezone"`
	Days       []DayResponse `json:"days"`
}

// BlockResponse блокировка времени
type BlockResponse struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"providerId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BlockListResponse список блокировок
type BlockListResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// Методы конвертации

// FromDomainDay конвертирует запись расписания в DTO
func FromDomainDay(e *domain.WorkingHoursEntry) DayResponse {
	day := DayResponse{
		DayOfWeek: int(e.DayOfWeek),
		IsWorking: e.IsWorking,
	}
	if !e.IsWorking {
		return day
	}

	day.StartTime = timeStringPtr(e.StartTime)
	day.EndTime = timeStringPtr(e.EndTime)
	if e.HasBreak() {
		day.BreakStart = timeStringPtr(*e.BreakStart)
		day.BreakEnd = timeStringPtr(*e.BreakEnd)
	}
	return day
}

// FromDomainWeek конвертирует недельное расписание в DTO
func FromDomainWeek(provider *domain.Provider, week []*domain.WorkingHoursEntry) *WeekResponse {
	resp := &WeekResponse{
		ProviderID: provider.ID,
		Timezone:   provider.Timezone,
		Days:       make([]DayResponse, 0, len(week)),
	}
	for _, e := range week {
		resp.Days = append(resp.Days, FromDomainDay(e))
	}
	return resp
}

// FromDomainBlock конвертирует блокировку в DTO
func FromDomainBlock(b *domain.BlockedInterval) *BlockResponse {
	return &BlockResponse{
		ID:         b.ID,
		ProviderID: b.ProviderID,
		Start:      b.Start,
		End:        b.End,
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
}

func timeStringPtr(t types.TimeString) *string {
	s := t.String()
	return &s
}
