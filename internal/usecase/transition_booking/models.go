package transition_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/lifecycle"
)

// Config минимальное время до начала сеанса, когда ещё можно отменить бронь
// Нулевое значение снимает ограничение; администратор не ограничен
type Config struct {
	MinClientCancelNotice   time.Duration
	MinProviderCancelNotice time.Duration
}

// Request модель запроса на смену статуса
type Request struct {
	BookingID int64
	Target    domain.BookingStatus
	Actor     domain.Actor
	Reason    *string
}

// Response модель ответа со свежим состоянием бронирования
type Response struct {
	Booking         *domain.Booking
	From            domain.BookingStatus
	Effects         []lifecycle.Effect
	CancellationFee float64
}
