package find_next_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	findNextSlot "github.com/m04kA/SMC-SpaBookingService/internal/usecase/find_next_slot"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidQuery      = "некорректные параметры: нужен serviceId, from в формате YYYY-MM-DD"
	msgProviderNotFound  = "мастер не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgNoSlot            = "нет свободных слотов в пределах горизонта бронирования"
)

type Handler struct {
	useCase FindNextSlotUseCase
	logger  Logger
}

func NewHandler(useCase FindNextSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/next-slot?serviceId=&from=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/next-slot - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var query NextSlotQuery
	if err := handlers.DecodeQuery(r, &query); err != nil {
		h.logger.Warn("GET /providers/{id}/next-slot - Invalid query: provider_id=%d, error=%v", providerID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), query.ToUseCaseRequest(providerID))
	if err != nil {
		switch {
		case errors.Is(err, findNextSlot.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/next-slot - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, findNextSlot.ErrServiceNotFound):
			h.logger.Warn("GET /providers/{id}/next-slot - Service not found: provider_id=%d, service_id=%d",
				providerID, query.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, findNextSlot.ErrNoAvailableSlot):
			h.logger.Info("GET /providers/{id}/next-slot - No available slot: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgNoSlot)

		case errors.Is(err, findNextSlot.ErrInvalidInput):
			h.logger.Warn("GET /providers/{id}/next-slot - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /providers/{id}/next-slot - Failed to find slot: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/next-slot - Slot found: provider_id=%d, start=%s", providerID, result.Slot.Start)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
