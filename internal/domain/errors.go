package domain

import "errors"

// Cross-layer domain errors. Usecases re-export them next to their own sentinels.
var (
	ErrProviderNotFound  = errors.New("provider not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrBookingConflict   = errors.New("booking conflict: slot is already taken")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrActorNotAllowed   = errors.New("actor is not allowed to perform this transition")
)
