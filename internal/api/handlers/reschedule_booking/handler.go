package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	rescheduleBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса: нужен newStartAt в RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgProviderNotFound   = "мастер не найден"
	msgForbidden          = "доступ запрещен"
	msgSlotConflict       = "выбранный временной слот уже занят"
	msgCannotReschedule   = "бронирование в текущем статусе нельзя перенести"
	msgLimitReached       = "исчерпан лимит переносов"
	msgTooLateToMove      = "перенести бронь уже нельзя: до начала сеанса слишком мало времени"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgDateTooFar         = "новая дата слишком далеко в будущем"
	msgInvalidInput       = "некорректные данные переноса"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, actor))
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrProviderNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Provider not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d", bookingID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrBookingConflict):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Slot conflict: booking_id=%d, new_start=%s", bookingID, req.NewStartAt)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Cannot reschedule: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrRescheduleLimitReached):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Limit reached: booking_id=%d, role=%s", bookingID, actor.Role)
			handlers.RespondUnprocessable(w, msgLimitReached)

		case errors.Is(err, rescheduleBooking.ErrTooLateToReschedule):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Too late to reschedule: booking_id=%d", bookingID)
			handlers.RespondUnprocessable(w, msgTooLateToMove)

		case errors.Is(err, rescheduleBooking.ErrInvalidTimeSlot):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid time slot: booking_id=%d, new_start=%s", bookingID, req.NewStartAt)
			handlers.RespondUnprocessable(w, msgInvalidTimeSlot)

		case errors.Is(err, rescheduleBooking.ErrTooLateToBook):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Too late: booking_id=%d, new_start=%s", bookingID, req.NewStartAt)
			handlers.RespondUnprocessable(w, msgTooLateToBook)

		case errors.Is(err, rescheduleBooking.ErrDateTooFarInFuture):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Too far: booking_id=%d, new_start=%s", bookingID, req.NewStartAt)
			handlers.RespondUnprocessable(w, msgDateTooFar)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, %s -> %s, user_id=%d",
		bookingID, result.PreviousAt, result.Booking.StartAt, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
