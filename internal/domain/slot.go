package domain

import "time"

// Slot is a computed candidate booking interval; never persisted
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// Duration returns slot length
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// DaySlots slots of a single date
type DaySlots struct {
	Date  time.Time
	Slots []Slot
}

// HasAvailable returns true if at least one slot of the day can be booked
func (d DaySlots) HasAvailable() bool {
	for _, s := range d.Slots {
		if s.Available {
			return true
		}
	}
	return false
}
