package get_provider_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidParams     = "некорректные параметры запроса"
	msgForbidden         = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/bookings
// Query params: date, from, to, status, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/bookings - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var query ProviderBookingsQuery
	if err := handlers.DecodeQuery(r, &query); err != nil {
		h.logger.Warn("GET /providers/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит, что запрашивает мастер или администратор
	result, err := h.service.GetProviderBookings(r.Context(), query.ToServiceRequest(actor, providerID))
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /providers/{id}/bookings - Access denied: provider_id=%d, user_id=%d", providerID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput), errors.Is(err, bookings.ErrInvalidTimeRange):
			h.logger.Warn("GET /providers/{id}/bookings - Invalid filter: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /providers/{id}/bookings - Failed to get bookings: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/bookings - Bookings retrieved successfully: provider_id=%d, count=%d",
		providerID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
