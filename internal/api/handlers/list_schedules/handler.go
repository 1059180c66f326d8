package list_schedules

import (
	"errors"
	"net/http"

	"github.com/m04kA/MDC-ScheduleService/internal/api/handlers"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
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

// Handle GET /api/v1/schedules
// Query params: status, type, userId, packageId, q, fromDate, toDate,
// includeCancelled, sortBy, sortDir, page, limit (все опциональны)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceReq, err := ToServiceRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /schedules - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("GET /schedules - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /schedules - Failed to list schedules: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /schedules - Schedules listed: count=%d, total=%d",
		len(result.Data), result.Pagination.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
