package manage_blocks

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidBlockID     = "некорректный ID блокировки"
	msgInvalidRequestBody = "некорректное тело запроса: нужны start < end в RFC3339, reason до 255 символов"
	msgInvalidQuery       = "некорректные параметры: нужны from и to в формате YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgProviderNotFound   = "мастер не найден"
	msgBlockNotFound      = "блокировка не найдена"
	msgOverlapsBooking    = "интервал пересекается с активным бронированием"
	msgScheduleBusy       = "расписание мастера сейчас изменяется, повторите запрос"
)

// Handler обслуживает блокировки времени мастера: создание, список и удаление
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

// Create POST /api/v1/providers/{providerId}/blocks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("POST /providers/{id}/blocks - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /providers/{id}/blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	block, err := h.service.Block(r.Context(), req.ToServiceRequest(actor, providerID))
	if err != nil {
		h.respondError(w, "POST /providers/{id}/blocks", providerID, actor.ID, err)
		return
	}

	h.logger.Info("POST /providers/{id}/blocks - Block created: provider_id=%d, block_id=%d", providerID, block.ID)
	handlers.RespondJSON(w, http.StatusCreated, block)
}

// List GET /api/v1/providers/{providerId}/blocks?from=&to=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/blocks - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/{id}/blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var query ListBlocksQuery
	if err := handlers.DecodeQuery(r, &query); err != nil {
		h.logger.Warn("GET /providers/{id}/blocks - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	blocks, err := h.service.ListBlocks(r.Context(), query.ToServiceRequest(actor, providerID))
	if err != nil {
		h.respondError(w, "GET /providers/{id}/blocks", providerID, actor.ID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, blocks)
}

// Delete DELETE /api/v1/providers/{providerId}/blocks/{blockId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("DELETE /providers/{id}/blocks/{blockId} - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	blockID, err := handlers.PathInt64(r, "blockId")
	if err != nil {
		h.logger.Warn("DELETE /providers/{id}/blocks/{blockId} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /providers/{id}/blocks/{blockId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Unblock(r.Context(), actor, providerID, blockID); err != nil {
		h.respondError(w, "DELETE /providers/{id}/blocks/{blockId}", providerID, actor.ID, err)
		return
	}

	h.logger.Info("DELETE /providers/{id}/blocks/{blockId} - Block removed: provider_id=%d, block_id=%d", providerID, blockID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, providerID, userID int64, err error) {
	switch {
	case errors.Is(err, schedule.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: provider_id=%d, user_id=%d", route, providerID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, schedule.ErrProviderNotFound):
		h.logger.Warn("%s - Provider not found: provider_id=%d", route, providerID)
		handlers.RespondNotFound(w, msgProviderNotFound)

	case errors.Is(err, schedule.ErrBlockNotFound):
		h.logger.Warn("%s - Block not found: provider_id=%d", route, providerID)
		handlers.RespondNotFound(w, msgBlockNotFound)

	case errors.Is(err, schedule.ErrBlockOverlapsBooking):
		h.logger.Warn("%s - Block overlaps booking: provider_id=%d", route, providerID)
		handlers.RespondConflict(w, msgOverlapsBooking)

	case errors.Is(err, schedule.ErrScheduleBusy):
		h.logger.Warn("%s - Schedule busy: provider_id=%d", route, providerID)
		handlers.RespondConflict(w, msgScheduleBusy)

	case errors.Is(err, schedule.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: provider_id=%d, error=%v", route, providerID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)

	default:
		h.logger.Error("%s - Failed: provider_id=%d, error=%v", route, providerID, err)
		handlers.RespondInternalError(w)
	}
}
