package cancel_schedule

import (
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

// CancelScheduleRequest HTTP request model
type CancelScheduleRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelScheduleRequest) ToServiceRequest(actorID int64) *models.CancelScheduleRequest {
	return &models.CancelScheduleRequest{
		ActorID: actorID,
		Reason:  r.Reason,
	}
}
