package create_booking

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrProviderNotFound возвращается, когда мастер не найден
	ErrProviderNotFound = domain.ErrProviderNotFound

	// ErrServiceNotFound возвращается, когда услуга не найдена или принадлежит другому мастеру
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrBookingConflict возвращается, когда слот занят или заблокирован параллельной бронью
	ErrBookingConflict = domain.ErrBookingConflict

	// ErrInvalidTimeSlot возвращается, когда начало не совпадает со слотом сетки или попадает на перерыв
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrTooLateToBook возвращается, когда слот начинается раньше now + lead time
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда дата превышает горизонт бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrAccessDenied возвращается, когда актор не может бронировать от имени клиента
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
