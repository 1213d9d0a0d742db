package get_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgProviderNotFound  = "мастер не найден"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/schedule - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	week, err := h.service.GetWeek(r.Context(), providerID)
	if err != nil {
		if errors.Is(err, schedule.ErrProviderNotFound) {
			h.logger.Warn("GET /providers/{id}/schedule - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)
			return
		}
		h.logger.Error("GET /providers/{id}/schedule - Failed to get schedule: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/schedule - Schedule retrieved: provider_id=%d", providerID)
	handlers.RespondJSON(w, http.StatusOK, week)
}
