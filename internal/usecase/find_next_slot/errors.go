package find_next_slot

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = domain.ErrProviderNotFound

	// ErrServiceNotFound возвращается, когда услуга не найдена или принадлежит другому мастеру
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrNoAvailableSlot возвращается, когда в пределах горизонта нет свободных слотов
	ErrNoAvailableSlot = errors.New("find_next_slot: no available slot within horizon")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("find_next_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("find_next_slot: internal error")
)
