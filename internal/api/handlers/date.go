package handlers

import (
	"reflect"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// parseDateValue конвертер gorilla/schema для дат YYYY-MM-DD
// Пустое reflect.Value означает ошибку конвертации
func parseDateValue(s string) reflect.Value {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(t)
}
