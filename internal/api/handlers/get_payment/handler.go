package get_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MDC-ScheduleService/internal/api/handlers"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules"
)

const (
	msgInvalidScheduleID = "некорректный ID записи"
	msgNotFound          = "запись не найдена"
	msgPriceUnavailable  = "цена записи временно недоступна"
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

// Handle GET /api/v1/schedules/{scheduleId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scheduleIDStr := vars["scheduleId"]

	scheduleID, err := strconv.ParseInt(scheduleIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /schedules/{id}/payment - Invalid schedule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	payment, err := h.service.GetPayment(r.Context(), scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrScheduleNotFound):
			h.logger.Warn("GET /schedules/{id}/payment - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedules.ErrPriceUnavailable):
			// Нельзя показать ноль вместо неизвестной цены, честнее отдать 503
			h.logger.Warn("GET /schedules/{id}/payment - Price unavailable: schedule_id=%d", scheduleID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgPriceUnavailable)

		default:
			h.logger.Error("GET /schedules/{id}/payment - Failed to get payment: schedule_id=%d, error=%v",
				scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /schedules/{id}/payment - Payment retrieved: schedule_id=%d", scheduleID)
	handlers.RespondJSON(w, http.StatusOK, payment)
}
