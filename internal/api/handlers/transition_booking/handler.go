package transition_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	transitionBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/transition_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса: нужен status"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidTransition  = "недопустимый переход статуса"
	msgActorNotAllowed    = "ваша роль не может выполнить этот переход"
	msgConcurrentUpdate   = "бронирование было изменено параллельно, повторите запрос"
	msgInvalidInput       = "некорректные данные запроса"
	msgTooLateToCancel    = "отменить бронь уже нельзя: до начала сеанса слишком мало времени"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, actor))
	if err != nil {
		switch {
		case errors.Is(err, transitionBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/status - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/status - Access denied: booking_id=%d, user_id=%d", bookingID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionBooking.ErrActorNotAllowed):
			h.logger.Warn("PATCH /bookings/{id}/status - Actor not allowed: booking_id=%d, role=%s, target=%s",
				bookingID, actor.Role, req.Status)
			handlers.RespondForbidden(w, msgActorNotAllowed)

		case errors.Is(err, transitionBooking.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid transition: booking_id=%d, target=%s", bookingID, req.Status)
			handlers.RespondUnprocessable(w, msgInvalidTransition)

		case errors.Is(err, transitionBooking.ErrTooLateToCancel):
			h.logger.Warn("PATCH /bookings/{id}/status - Too late to cancel: booking_id=%d, role=%s", bookingID, actor.Role)
			handlers.RespondUnprocessable(w, msgTooLateToCancel)

		case errors.Is(err, transitionBooking.ErrConcurrentUpdate):
			h.logger.Warn("PATCH /bookings/{id}/status - Concurrent update: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, transitionBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /bookings/{id}/status - Failed to change status: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status changed: booking_id=%d, %s -> %s, user_id=%d",
		bookingID, result.From, result.Booking.Status, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
