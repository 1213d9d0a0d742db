package find_next_slot

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Config параметры поиска
type Config struct {
	LeadTime        time.Duration
	MaxHorizonDays  int // Поиск не дальше горизонта от сегодняшнего дня
	DefaultLocation *time.Location
}

// Request модель запроса ближайшего слота
type Request struct {
	ProviderID int64
	ServiceID  int64
	From       time.Time // С какой даты искать; нулевое значение = сегодня
}

// Response модель ответа с ближайшим свободным слотом
type Response struct {
	ProviderID int64
	ServiceID  int64
	Timezone   string
	Slot       domain.Slot
}
