package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_availability"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidQuery      = "некорректные параметры: нужны serviceId, from и to в формате YYYY-MM-DD"
	msgInvalidRange      = "некорректный диапазон дат"
	msgProviderNotFound  = "мастер не найден"
	msgServiceNotFound   = "услуга не найдена"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/availability?serviceId=&from=&to=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/availability - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var query AvailabilityQuery
	if err := handlers.DecodeQuery(r, &query); err != nil {
		h.logger.Warn("GET /providers/{id}/availability - Invalid query: provider_id=%d, error=%v", providerID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), query.ToUseCaseRequest(providerID))
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/availability - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /providers/{id}/availability - Service not found: provider_id=%d, service_id=%d",
				providerID, query.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /providers/{id}/availability - Invalid range: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /providers/{id}/availability - Failed to get availability: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/availability - Availability retrieved: provider_id=%d, service_id=%d, days=%d",
		providerID, query.ServiceID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
