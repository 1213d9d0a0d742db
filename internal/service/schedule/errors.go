package schedule

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = domain.ErrProviderNotFound

	// ErrBlockNotFound возвращается, когда блокировка не найдена у мастера
	ErrBlockNotFound = errors.New("blocked interval not found")

	// ErrBlockOverlapsBooking возвращается, когда блокировка пересекает активную бронь
	ErrBlockOverlapsBooking = errors.New("blocked interval overlaps an active booking")

	// ErrScheduleBusy возвращается, когда расписание мастера занято другой записью дольше ожидания
	ErrScheduleBusy = errors.New("provider schedule is busy, try again")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на расписание
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidSchedule возвращается при некорректных рабочих часах
	ErrInvalidSchedule = errors.New("invalid working hours")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
