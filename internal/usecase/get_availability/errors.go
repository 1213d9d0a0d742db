package get_availability

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = domain.ErrProviderNotFound

	// ErrServiceNotFound возвращается, когда услуга не найдена или принадлежит другому мастеру
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
