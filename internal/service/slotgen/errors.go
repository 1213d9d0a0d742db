package slotgen

import "errors"

var (
	// ErrInvalidDuration возвращается, когда длительность услуги не положительна
	ErrInvalidDuration = errors.New("slotgen: service duration must be positive")

	// ErrInvalidWorkingHours возвращается, когда время в расписании не парсится
	ErrInvalidWorkingHours = errors.New("slotgen: invalid working hours")
)
