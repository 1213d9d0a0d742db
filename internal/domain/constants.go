package domain

// Default configuration values
const (
	DefaultLeadTimeMinutes = 60 // 1 hour
	DefaultMaxHorizonDays  = 30
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 480 // 8 hours
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxBlockReasonLength        = 255
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, освобождающих слот
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses список статусов, занимающих время мастера
// completed тоже занимает интервал: сеанс уже прошёл, время не переиспользуется
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
