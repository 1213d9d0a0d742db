package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса: нужны providerId, serviceId и startAt в RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "нельзя бронировать от имени другого пользователя"
	msgSlotConflict       = "выбранный временной слот уже занят"
	msgProviderNotFound   = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrBookingConflict):
			h.logger.Warn("POST /bookings - Slot conflict: provider_id=%d, start=%s, user_id=%d",
				req.ProviderID, req.StartAt, actor.ID)
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: provider_id=%d", req.ProviderID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: provider_id=%d, service_id=%d", req.ProviderID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings - Access denied: user_id=%d, role=%s, client_id=%d", actor.ID, actor.Role, req.ClientID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: provider_id=%d, start=%s", req.ProviderID, req.StartAt)
			handlers.RespondUnprocessable(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /bookings - Invalid time slot: provider_id=%d, start=%s", req.ProviderID, req.StartAt)
			handlers.RespondUnprocessable(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: provider_id=%d, start=%s", req.ProviderID, req.StartAt)
			handlers.RespondUnprocessable(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: provider_id=%d, user_id=%d, error=%v",
				req.ProviderID, actor.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, provider_id=%d, client_id=%d",
		result.Booking.ID, result.Booking.ProviderID, result.Booking.ClientID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
