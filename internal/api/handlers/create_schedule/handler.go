package create_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/MDC-ScheduleService/internal/api/handlers"
	createBooking "github.com/m04kA/MDC-ScheduleService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRequest     = "некорректные параметры записи"
	msgInvalidDate        = "некорректная дата записи"
	msgPackageNotFound    = "пакет консультаций не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgCapacityExceeded   = "выбранный слот заполнен, выберите другой слот"
	msgDuplicateBooking   = "у пациента уже есть активная запись с таким составом на этот слот"
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

// Handle POST /api/v1/schedules
// Заголовок Idempotency-Key (опционально) делает повтор запроса безопасным.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и типа)
	useCaseReq, err := req.ToUseCaseRequest(idempotencyKey)
	if err != nil {
		h.logger.Warn("POST /schedules - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequest)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /schedules - Invalid input: user_id=%d, error=%v", req.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /schedules - Invalid booking date: user_id=%d, date=%s", req.UserID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrPackageNotFound):
			h.logger.Warn("POST /schedules - Package not found: user_id=%d", req.UserID)
			handlers.RespondNotFound(w, msgPackageNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /schedules - Service not found: user_id=%d", req.UserID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /schedules - Slot capacity exceeded: user_id=%d, date=%s, time_offset=%d",
				req.UserID, req.Date, req.TimeOffset)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrDuplicateBooking):
			h.logger.Warn("POST /schedules - Duplicate booking: user_id=%d, date=%s, time_offset=%d",
				req.UserID, req.Date, req.TimeOffset)
			handlers.RespondConflict(w, msgDuplicateBooking)

		default:
			h.logger.Error("POST /schedules - Failed to create schedule: user_id=%d, error=%v", req.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Воспроизведение по ключу идемпотентности отдаём как 200, создание как 201
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /schedules - Schedule created: schedule_id=%d, user_id=%d, replayed=%t",
		result.ID, req.UserID, result.Replayed)
	handlers.RespondJSON(w, status, response)
}
