package transition_booking

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("transition_booking: booking not found")

	// ErrInvalidTransition возвращается для перехода, которого нет в таблице переходов
	ErrInvalidTransition = domain.ErrInvalidTransition

	// ErrActorNotAllowed возвращается, когда переход легален, но роль не может его выполнить
	ErrActorNotAllowed = domain.ErrActorNotAllowed

	// ErrAccessDenied возвращается, когда актор не участник бронирования
	ErrAccessDenied = errors.New("transition_booking: access denied")

	// ErrTooLateToCancel возвращается, когда до начала сеанса осталось меньше допустимого для роли
	ErrTooLateToCancel = errors.New("transition_booking: too late to cancel this booking")

	// ErrConcurrentUpdate возвращается, когда бронирование изменили параллельно
	ErrConcurrentUpdate = domain.ErrBookingConflict

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("transition_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_booking: internal error")
)
