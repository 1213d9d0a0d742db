package reschedule_booking

import (
	"errors"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrProviderNotFound возвращается, когда мастер брони больше не активен
	ErrProviderNotFound = domain.ErrProviderNotFound

	// ErrBookingConflict возвращается, когда новый слот занят
	ErrBookingConflict = domain.ErrBookingConflict

	// ErrCannotReschedule возвращается для броней не в статусе pending/confirmed
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled in its current status")

	// ErrRescheduleLimitReached возвращается, когда исчерпан лимит переносов роли
	ErrRescheduleLimitReached = errors.New("reschedule_booking: reschedule limit reached")

	// ErrTooLateToReschedule возвращается, когда клиент переносит бронь слишком близко к её началу
	ErrTooLateToReschedule = errors.New("reschedule_booking: too late to reschedule this booking")

	// ErrInvalidTimeSlot возвращается, когда новое начало не совпадает со слотом сетки
	ErrInvalidTimeSlot = errors.New("reschedule_booking: invalid time slot")

	// ErrTooLateToBook возвращается, когда новый слот начинается раньше now + lead time
	ErrTooLateToBook = errors.New("reschedule_booking: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда новый слот дальше окна переноса
	ErrDateTooFarInFuture = errors.New("reschedule_booking: date is too far in the future")

	// ErrAccessDenied возвращается, когда актор не участник бронирования
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
