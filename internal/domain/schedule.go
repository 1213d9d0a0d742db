package domain

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// Provider is a master who offers services and owns a weekly schedule
type Provider struct {
	ID        int64
	Name      string
	Timezone  string
	IsActive  bool
	CreatedAt time.Time
}

// Location returns the provider timezone, falling back to def when unset or unknown
func (p *Provider) Location(def *time.Location) *time.Location {
	if p.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return def
	}
	return loc
}

// WorkingHoursEntry describes one weekday of a provider's weekly schedule
// Times are wall-clock times in the provider timezone
type WorkingHoursEntry struct {
	ProviderID int64
	DayOfWeek  time.Weekday // 0 = Sunday
	IsWorking  bool
	StartTime  types.TimeString
	EndTime    types.TimeString
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString
}

// HasBreak returns true if the entry declares a break inside the working window
func (w *WorkingHoursEntry) HasBreak() bool {
	return w.BreakStart != nil && w.BreakEnd != nil && !w.BreakStart.IsZero() && !w.BreakEnd.IsZero()
}

// NonWorkingDay returns an entry for a weekday without a stored schedule
func NonWorkingDay(providerID int64, day time.Weekday) *WorkingHoursEntry {
	return &WorkingHoursEntry{ProviderID: providerID, DayOfWeek: day, IsWorking: false}
}

// BlockedInterval is time the provider removed from booking
type BlockedInterval struct {
	ID         int64
	ProviderID int64
	Start      time.Time
	End        time.Time
	Reason     *string
	CreatedAt  time.Time
}

// BookedInterval is a half-open [Start, End) interval occupied by a booking or a block
// BookingID is 0 for provider blocks
type BookedInterval struct {
	BookingID int64
	Start     time.Time
	End       time.Time
}

// Overlaps returns true if [start, end) intersects the interval
func (i BookedInterval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && i.Start.Before(end)
}
