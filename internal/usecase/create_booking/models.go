package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Config параметры бронирования
type Config struct {
	LeadTime        time.Duration  // Минимальный запас до начала слота
	MaxHorizonDays  int            // Насколько далеко вперёд можно бронировать
	LockWait        time.Duration  // Сколько ждать блокировку расписания мастера
	DefaultLocation *time.Location // Таймзона мастеров без собственной таймзоны
}

// Request модель запроса на создание бронирования
type Request struct {
	Actor      domain.Actor // Кто создаёт бронь
	ProviderID int64
	ServiceID  int64
	ClientID   int64
	StartAt    time.Time // Начало слота
	Notes      *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
