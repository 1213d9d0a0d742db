package update_schedule_day

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidDayOfWeek   = "день недели должен быть числом от 0 (воскресенье) до 6"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgProviderNotFound   = "мастер не найден"
	msgInvalidSchedule    = "некорректные рабочие часы: начало должно быть раньше конца, перерыв внутри рабочего окна"
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

// Handle PUT /api/v1/providers/{providerId}/schedule/{dayOfWeek}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/schedule/{day} - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	day, err := strconv.Atoi(mux.Vars(r)["dayOfWeek"])
	if err != nil || day < int(time.Sunday) || day > int(time.Saturday) {
		h.logger.Warn("PUT /providers/{id}/schedule/{day} - Invalid day of week: %q", mux.Vars(r)["dayOfWeek"])
		handlers.RespondBadRequest(w, msgInvalidDayOfWeek)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /providers/{id}/schedule/{day} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateDayRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/schedule/{day} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpsertDay(r.Context(), req.ToServiceRequest(actor, providerID, time.Weekday(day)))
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /providers/{id}/schedule/{day} - Access denied: provider_id=%d, user_id=%d", providerID, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrProviderNotFound):
			h.logger.Warn("PUT /providers/{id}/schedule/{day} - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, schedule.ErrInvalidSchedule), errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /providers/{id}/schedule/{day} - Invalid schedule: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /providers/{id}/schedule/{day} - Failed to update schedule: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /providers/{id}/schedule/{day} - Schedule updated: provider_id=%d, day=%d", providerID, day)
	handlers.RespondJSON(w, http.StatusOK, result)
}
