package record_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MDC-ScheduleService/internal/api/handlers"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules"
)

const (
	msgInvalidScheduleID  = "некорректный ID записи"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidAmount      = "сумма оплаты должна быть положительной"
	msgNotFound           = "запись не найдена"
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

// Handle POST /api/v1/schedules/{scheduleId}/payments
// Вызывается биллинговой системой после проведения оплаты.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scheduleIDStr := vars["scheduleId"]

	scheduleID, err := strconv.ParseInt(scheduleIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /schedules/{id}/payments - Invalid schedule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduleID)
		return
	}

	var req RecordPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedules/{id}/payments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.RecordPayment(r.Context(), scheduleID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrScheduleNotFound):
			h.logger.Warn("POST /schedules/{id}/payments - Schedule not found: schedule_id=%d", scheduleID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("POST /schedules/{id}/payments - Invalid amount: schedule_id=%d, amount=%d",
				scheduleID, req.Amount)
			handlers.RespondBadRequest(w, msgInvalidAmount)

		default:
			h.logger.Error("POST /schedules/{id}/payments - Failed to record payment: schedule_id=%d, error=%v",
				scheduleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Возвращаем актуальное платежное состояние
	payment, err := h.service.GetPayment(r.Context(), scheduleID)
	if err != nil {
		// Оплата уже зафиксирована, отсутствие представления не делает запрос неуспешным
		h.logger.Warn("POST /schedules/{id}/payments - Payment recorded but view unavailable: schedule_id=%d, error=%v",
			scheduleID, err)
		handlers.RespondJSON(w, http.StatusOK, nil)
		return
	}

	h.logger.Info("POST /schedules/{id}/payments - Payment recorded: schedule_id=%d, amount=%d",
		scheduleID, req.Amount)
	handlers.RespondJSON(w, http.StatusOK, payment)
}
