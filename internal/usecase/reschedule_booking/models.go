package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Config параметры переноса
type Config struct {
	LeadTime               time.Duration
	WindowDays             int // Насколько далеко вперёд можно перенести
	LockWait               time.Duration
	MaxClientReschedules   int
	MaxProviderReschedules int
	DefaultLocation        *time.Location

	// Клиент не может перенести бронь, если до её начала осталось меньше
	MinClientRescheduleNotice time.Duration
}

// Request модель запроса на перенос
type Request struct {
	BookingID  int64
	NewStartAt time.Time
	Actor      domain.Actor
	Reason     *string
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	Booking    *domain.Booking
	PreviousAt time.Time
	Remaining  int // Сколько переносов осталось у роли актора; -1 без ограничения
}
