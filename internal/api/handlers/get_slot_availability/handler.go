package get_slot_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/MDC-ScheduleService/internal/api/handlers"
	getSlotAvailability "github.com/m04kA/MDC-ScheduleService/internal/usecase/get_slot_availability"
)

const (
	msgInvalidPackageID = "некорректный ID пакета"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPackageNotFound  = "пакет консультаций не найден"
)

type Handler struct {
	useCase GetSlotAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetSlotAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/packages/{packageId}/slot-availability
// Query params: date (required, YYYY-MM-DD, любая дата внутри недели)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	packageIDStr := vars["packageId"]

	packageID, err := strconv.ParseInt(packageIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /packages/{id}/slot-availability - Invalid package ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPackageID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /packages/{id}/slot-availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(packageID, dateStr)
	if err != nil {
		h.logger.Warn("GET /packages/{id}/slot-availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getSlotAvailability.ErrInvalidInput):
			h.logger.Warn("GET /packages/{id}/slot-availability - Invalid input: package_id=%d", packageID)
			handlers.RespondBadRequest(w, msgInvalidPackageID)

		case errors.Is(err, getSlotAvailability.ErrPackageNotFound):
			h.logger.Warn("GET /packages/{id}/slot-availability - Package not found: package_id=%d", packageID)
			handlers.RespondNotFound(w, msgPackageNotFound)

		default:
			h.logger.Error("GET /packages/{id}/slot-availability - Failed to get availability: package_id=%d, error=%v",
				packageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /packages/{id}/slot-availability - Availability retrieved: package_id=%d, slots_count=%d",
		packageID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
