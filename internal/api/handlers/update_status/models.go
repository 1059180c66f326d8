package update_status

import (
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"` // "checkedin" | "serving" | "completed"
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(actorID int64) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		ActorID: actorID,
		Status:  r.Status,
	}
}
