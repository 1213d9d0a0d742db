package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Config параметры расчёта доступности
type Config struct {
	LeadTime        time.Duration  // Минимальный запас до начала слота
	MaxHorizonDays  int            // Максимальная длина запрашиваемого диапазона
	DefaultLocation *time.Location // Таймзона мастеров без собственной таймзоны
}

// Request модель запроса доступности
type Request struct {
	ProviderID int64
	ServiceID  int64
	From       time.Time // Первая дата диапазона (учитывается только дата)
	To         time.Time // Последняя дата диапазона включительно
}

// Response модель ответа с доступностью по дням
type Response struct {
	ProviderID      int64
	ServiceID       int64
	DurationMinutes int
	Timezone        string
	From            time.Time         // Фактическое начало диапазона после ограничения
	To              time.Time         // Фактический конец диапазона после ограничения
	Days            []domain.DaySlots // Только рабочие дни, по возрастанию даты
}
